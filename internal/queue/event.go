package queue

// ReservationConfirmedEvent is published when a booking is successfully
// confirmed.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the active store.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	DisplayID     string `json:"display_id"`
	ClientEmail   string `json:"client_email"`
	RoomNumber    string `json:"room_number"`
	RoomType      string `json:"room_type"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Guests        int    `json:"guests"`
	NightlyPrice  int64  `json:"nightly_price"`
	ConfirmedAt   string `json:"confirmed_at"`
}
