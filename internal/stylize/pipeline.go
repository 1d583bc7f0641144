package stylize

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/pinelime/games-services/internal/storage"
)

// Uploader is the slice of the storage helper the pipeline needs.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType, filename, destinationPath, bucket string) (*storage.UploadResult, error)
}

// Pipeline runs the whole stylization flow: submit the workflow, poll at a
// fixed cadence until done, then fetch the produced asset.
type Pipeline struct {
	client   *Client
	poller   *Poller
	uploader Uploader
}

func NewPipeline(client *Client, poller *Poller, uploader Uploader) *Pipeline {
	return &Pipeline{
		client:   client,
		poller:   poller,
		uploader: uploader,
	}
}

// Stylize submits the image and blocks until the produced asset is fetched.
func (p *Pipeline) Stylize(ctx context.Context, imageURL string) ([]byte, error) {
	pred, err := p.client.CreatePrediction(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	log.Infof("stylization submitted, prediction %s", pred.ID)

	done, err := p.poller.Wait(ctx, pred.ID)
	if err != nil {
		return nil, err
	}
	if len(done.Output) == 0 {
		return nil, fmt.Errorf("stylization succeeded with no output")
	}

	return p.client.FetchOutput(ctx, done.Output[0])
}

// StylizeToOrder runs Stylize and persists the result under the order's
// namespace, returning its storage URLs.
func (p *Pipeline) StylizeToOrder(ctx context.Context, imageURL, orderID string) (*storage.UploadResult, error) {
	data, err := p.Stylize(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return p.uploader.Upload(ctx, data, "image/webp", "", "puzzle-a-day/"+orderID, "")
}
