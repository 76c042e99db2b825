package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
)

var orderIDPattern = regexp.MustCompile(`\bORD-\d+\b`)

// OrderSpecialist handles order tracking and order history.
type OrderSpecialist struct {
	store     domain.RecordStore
	generator llm.Generator
}

func NewOrderSpecialist(store domain.RecordStore, generator llm.Generator) *OrderSpecialist {
	return &OrderSpecialist{store: store, generator: generator}
}

func (s *OrderSpecialist) Handle(ctx context.Context, req *TurnRequest) (string, error) {
	if id := orderIDPattern.FindString(req.Message); id != "" {
		return s.trackOrder(ctx, req, id)
	}

	if req.UserID != "" {
		return s.orderHistory(ctx, req)
	}

	return "Could you give me your order ID (it looks like ORD-12345)?", nil
}

func (s *OrderSpecialist) trackOrder(ctx context.Context, req *TurnRequest, orderID string) (string, error) {
	out, err := req.Tools.Record("track_order", orderID, func() (string, error) {
		var order domain.Order
		if err := s.store.GetByID(ctx, domain.CollectionOrders, orderID, &order); err != nil {
			return "", err
		}
		data, _ := json.Marshal(order)
		return string(data), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("I couldn't find an order with ID %s. Could you double-check it?", orderID), nil
		}
		return "", err
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(out), &order); err != nil {
		return "", fmt.Errorf("decode order: %w", err)
	}

	fallback := fmt.Sprintf("Order %s is %s.", order.ID, order.Status)
	if order.Carrier != "" {
		fallback += fmt.Sprintf(" Carrier: %s, tracking number %s.", order.Carrier, order.TrackingNumber)
	}
	if order.EstimatedDelivery != "" {
		fallback += fmt.Sprintf(" Estimated delivery: %s.", order.EstimatedDelivery)
	}

	return s.compose(ctx, req, "Give the customer their order's tracking status.", []string{out}, fallback)
}

func (s *OrderSpecialist) orderHistory(ctx context.Context, req *TurnRequest) (string, error) {
	out, err := req.Tools.Record("get_order_history", req.UserID, func() (string, error) {
		var orders []domain.Order
		if err := s.store.QueryByField(ctx, domain.CollectionOrders, "customer_id", req.UserID, &orders); err != nil {
			return "", err
		}
		data, _ := json.Marshal(orders)
		return string(data), nil
	})
	if err != nil {
		return "", err
	}

	var orders []domain.Order
	if err := json.Unmarshal([]byte(out), &orders); err != nil {
		return "", fmt.Errorf("decode orders: %w", err)
	}
	if len(orders) == 0 {
		return "I couldn't find any orders on your account.", nil
	}

	var b strings.Builder
	b.WriteString("Your recent orders:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "- %s: %s, $%.2f\n", o.ID, o.Status, o.Total)
	}

	return s.compose(ctx, req, "Summarize the customer's order history.", []string{out}, b.String())
}

func (s *OrderSpecialist) compose(ctx context.Context, req *TurnRequest, instruction string, outputs []string, fallback string) (string, error) {
	reply, err := s.generator.Generate(ctx, llm.BuildReplyPrompt(instruction, req.Message, outputs))
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Warn().Err(err).Msg("reply generation failed, using plain rendering")
		return fallback, nil
	}
	return reply, nil
}
