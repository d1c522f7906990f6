package domain

import "time"

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}

type SubscriberPort interface {
	Subscribe(topic, groupID string) (<-chan Message, error)
}

type CouponEventType string

const (
	EventCouponClaimed CouponEventType = "coupon.claimed"
	EventCouponUsed    CouponEventType = "coupon.used"
)

// CouponEvent is emitted after a claim or a use has been committed.
type CouponEvent struct {
	EventID      string          `json:"event_id"`
	Kind         CouponEventType `json:"type"`
	InstanceID   int64           `json:"instance_id"`
	Code         string          `json:"code"`
	CouponID     int64           `json:"coupon_id"`
	CampaignID   int64           `json:"campaign_id"`
	StoreID      int64           `json:"store_id"`
	UserID       int64           `json:"user_id"`
	Value        string          `json:"value"`
	DiscountType DiscountType    `json:"discount_type"`
	ValidatedBy  *int64          `json:"validated_by,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// CouponEventPublisher is the port the usecases publish through.
type CouponEventPublisher interface {
	PublishCouponEvent(event CouponEvent) error
}
