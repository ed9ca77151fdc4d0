package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPPublisher 基于 amqp091 的持久化消息发布器
// 复用单个连接，每次发布打开独立 channel
type AMQPPublisher struct {
	url    string
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewAMQPPublisher 建立连接；连接失败时返回错误，由调用方降级为 NopPublisher
func NewAMQPPublisher(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	return &AMQPPublisher{url: url, logger: logger, conn: conn}, nil
}

// connection 连接断开后自动重连
func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

// Publish 以 JSON 发布到同名持久化队列
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	conn, err := p.connection()
	if err != nil {
		p.logger.Warn("RabbitMQ 重连失败", zap.String("queue", queue), zap.Error(err))
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("打开 RabbitMQ channel 失败", zap.String("queue", queue), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.Warn("声明队列失败", zap.String("queue", queue), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.Warn("发布事件失败", zap.String("queue", queue), zap.Error(err))
		return err
	}
	return nil
}

// Close 关闭连接
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// Encode 事件序列化
func Encode(event interface{}) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("序列化事件失败: %w", err)
	}
	return body, nil
}
