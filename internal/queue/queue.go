// internal/queue/queue.go

// Package queue defines the at-least-once delivery contract the worker
// loops are built on. A received message stays hidden from other consumers
// for the broker's visibility-timeout window and is removed only by an
// explicit Delete; an unacknowledged message reappears after the window.
// No cross-message ordering is guaranteed.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Message is one received queue entry. ReceiptHandle loans ownership of the
// message to the caller for a single visibility-timeout window.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Queue is the capability contract over one logical queue.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Envelope is the JSON message body shared by both logical queues.
type Envelope struct {
	ProductID  string `json:"product_id"`
	PromptID   string `json:"prompt_id,omitempty"`
	IsRawImage bool   `json:"is_raw_image,omitempty"`
	Action     string `json:"action,omitempty"`
}

func (e Envelope) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return string(data), nil
}

func DecodeEnvelope(body string) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return e, nil
}
