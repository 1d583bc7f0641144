package broker

import (
	"encoding/json"

	natsio "github.com/nats-io/nats.go"
	"github.com/pinelime/games-services/internal/comm"
	"github.com/pinelime/games-services/internal/gamesvc/models"
	"github.com/pinelime/games-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

// Broker fans record writes out to the runtime relay over NATS. Publishing is
// best effort: a failure is logged and never surfaced to the HTTP client.
type Broker struct {
	Conn *natsio.Conn
}

func NewBroker(nc *natsio.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) NotifyRecordCreated(rec *models.GameRecord) {
	b.publishEvent("record-created", rec)
}

func (b *Broker) NotifyRecordUpdated(rec *models.GameRecord) {
	b.publishEvent("record-updated", rec)
}

func (b *Broker) publishEvent(eventType string, rec *models.GameRecord) {
	if b == nil || b.Conn == nil {
		return
	}

	record, err := json.Marshal(rec)
	if err != nil {
		log.Errorf("Error encoding game event record: %s", err)
		return
	}

	ev := comm.GameEvent{
		Type:     eventType,
		OrderID:  rec.OrderID,
		UserID:   rec.UserID,
		GameType: rec.GameType,
		Record:   record,
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Error encoding game event: %s", err)
		return
	}

	if err := b.Conn.Publish(nats.TopicGameEvents, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", nats.TopicGameEvents, err)
	}
}
