package store

import "github.com/iliyamo/hotel-reservation/internal/model"

// CanonicalRooms returns the starting room set installed by the seed
// endpoint and by the selector when it first downgrades to the
// fallback store.
func CanonicalRooms() []model.Room {
	return []model.Room{
		{ID: 1, Number: "101", Type: model.RoomTypeSingle, Capacity: 1, NightlyPrice: 45000, Status: model.RoomAvailable},
		{ID: 2, Number: "202", Type: model.RoomTypeDouble, Capacity: 2, NightlyPrice: 65000, Status: model.RoomAvailable},
		{ID: 3, Number: "303", Type: model.RoomTypeSuite, Capacity: 4, NightlyPrice: 120000, Status: model.RoomAvailable},
		{ID: 4, Number: "404", Type: model.RoomTypeFamily, Capacity: 6, NightlyPrice: 95000, Status: model.RoomAvailable},
	}
}
