// Package rabbitmq implementa la publicación y el consumo de eventos del
// motor de inventario sobre un exchange topic de RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/tu-usuario/inventory-engine/internal/application/inventory"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// Publisher publica eventos de dominio en un exchange topic. La clave de
// enrutamiento es "inventory." + EventType() (ej. inventory.stock.reserved),
// de modo que los consumidores pueden suscribirse con inventory.stock.*.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
}

// NewPublisher conecta a RabbitMQ y declara el exchange topic durable.
func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar exchange: %w", err)
	}
	log.Info().Str("exchange", exchange).Msg("publicador de eventos conectado")
	return &Publisher{conn: conn, channel: channel, exchange: exchange, log: log}, nil
}

// Publish publica cada evento como mensaje JSON persistente. Devuelve el
// primer error; los eventos previos ya publicados no se revierten.
func (p *Publisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("serializar evento %s: %w", e.EventType(), err)
		}
		routingKey := "inventory." + e.EventType()
		if err := p.channel.PublishWithContext(ctx,
			p.exchange,
			routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
				Type:         e.EventType(),
				Body:         body,
			},
		); err != nil {
			return fmt.Errorf("publicar %s: %w", routingKey, err)
		}
		p.log.Debug().
			Str("routing_key", routingKey).
			Str("stock_id", e.AggregateID().String()).
			Msg("evento publicado")
	}
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
