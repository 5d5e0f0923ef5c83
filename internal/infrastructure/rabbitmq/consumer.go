package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer consume mensajes de una cola ligada al exchange topic. El handler
// recibe la clave de enrutamiento y el cuerpo; si devuelve error el mensaje
// se reencola una vez (requeue en el primer rechazo, descarte en el segundo).
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     zerolog.Logger
}

// NewConsumer conecta, declara exchange y cola durables y liga la cola a las
// claves de enrutamiento dadas (admite comodines de topic: order.*).
func NewConsumer(url, exchange, queue string, routingKeys []string, log zerolog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar exchange: %w", err)
	}
	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar cola: %w", err)
	}
	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("ligar cola a %s: %w", key, err)
		}
	}
	log.Info().Str("queue", q.Name).Strs("routing_keys", routingKeys).Msg("consumidor conectado")
	return &Consumer{conn: conn, channel: channel, queue: q.Name, log: log}, nil
}

// Consume procesa mensajes hasta que el contexto se cancele o el canal se cierre.
func (c *Consumer) Consume(ctx context.Context, handler func(routingKey string, body []byte) error) error {
	// Un mensaje en vuelo por consumidor: el siguiente se entrega al confirmar.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("configurar QoS: %w", err)
	}
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("iniciar consumo: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Str("queue", c.queue).Msg("consumidor detenido")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo cerrado")
			}
			if err := handler(msg.RoutingKey, msg.Body); err != nil {
				c.log.Error().Err(err).
					Str("routing_key", msg.RoutingKey).
					Bool("redelivered", msg.Redelivered).
					Msg("error procesando mensaje")
				// Reintento único: el primer fallo reencola, el segundo descarta.
				msg.Nack(false, !msg.Redelivered)
				continue
			}
			msg.Ack(false)
		}
	}
}

// Close cierra canal y conexión.
func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
