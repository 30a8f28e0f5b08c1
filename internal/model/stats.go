package model

// Stats holds the read-only counts shown on the admin dashboard.
// OccupancyRate is the percentage of rooms with a CONFIRMED
// reservation, rounded to the nearest integer.
type Stats struct {
	TotalRooms        int `json:"totalHabitaciones"`
	TotalReservations int `json:"totalReservas"`
	TotalClients      int `json:"totalClientes"`
	OccupancyRate     int `json:"occupancyRate"`
}
