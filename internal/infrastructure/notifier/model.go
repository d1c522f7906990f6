package notifier

import "time"

// CallbackPayload is the body POSTed to a store webhook when one of its
// coupons is used at the counter.
type CallbackPayload struct {
	EventID      string    `json:"event_id"`
	Event        string    `json:"evento"`
	StoreID      int64     `json:"loja_id"`
	CampaignID   int64     `json:"campanha_id"`
	CouponID     int64     `json:"cupom_id"`
	InstanceID   int64     `json:"cupom_usuario_id"`
	Code         string    `json:"codigo"`
	Value        string    `json:"valor"`
	DiscountType string    `json:"tipo"`
	ValidatedBy  *int64    `json:"validado_por,omitempty"`
	OccurredAt   time.Time `json:"data"`
}
