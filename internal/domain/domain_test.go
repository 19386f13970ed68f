package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTripValidate(t *testing.T) {
	valid := Trip{
		Destination:   "Lisbon",
		DepartureDate: NewDate(2025, 1, 1),
		ReturnDate:    NewDate(2025, 1, 10),
		Price:         100,
	}

	tests := []struct {
		name   string
		mutate func(*Trip)
		field  string
	}{
		{"valid", func(*Trip) {}, ""},
		{"same day return", func(tr *Trip) { tr.ReturnDate = tr.DepartureDate }, ""},
		{"free trip", func(tr *Trip) { tr.Price = 0 }, ""},
		{"highest price", func(tr *Trip) { tr.Price = MaxPrice }, ""},
		{"price over column range", func(tr *Trip) { tr.Price = 1e12 }, "preco"},
		{"return before departure", func(tr *Trip) { tr.ReturnDate = NewDate(2024, 12, 31) }, "data_regresso"},
		{"negative price", func(tr *Trip) { tr.Price = -0.01 }, "preco"},
		{"missing destination", func(tr *Trip) { tr.Destination = "" }, "destino"},
		{"destination too long", func(tr *Trip) { tr.Destination = strings.Repeat("a", 256) }, "destino"},
		{"missing departure", func(tr *Trip) { tr.DepartureDate = Date{} }, "data_partida"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := valid
			tt.mutate(&trip)
			fields := trip.Validate()
			if tt.field == "" {
				if fields != nil {
					t.Errorf("unexpected errors: %v", fields)
				}
				return
			}
			if len(fields[tt.field]) == 0 {
				t.Errorf("no error for %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestReservationValidate(t *testing.T) {
	tests := []struct {
		name  string
		res   Reservation
		field string
	}{
		{"one seat", Reservation{UserID: "u", TripID: "t", Seats: 1}, ""},
		{"zero seats", Reservation{UserID: "u", TripID: "t", Seats: 0}, "lugares"},
		{"negative seats", Reservation{UserID: "u", TripID: "t", Seats: -2}, "lugares"},
		{"missing trip", Reservation{UserID: "u", Seats: 1}, "viagem_id"},
		{"missing user", Reservation{TripID: "t", Seats: 1}, "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.res.Validate()
			if tt.field == "" {
				if fields != nil {
					t.Errorf("unexpected errors: %v", fields)
				}
				return
			}
			if len(fields[tt.field]) == 0 {
				t.Errorf("no error for %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name  string
		user  User
		field string
	}{
		{"valid", User{Name: "Ana", Email: "ana@example.com", Role: RoleUser}, ""},
		{"missing name", User{Email: "ana@example.com", Role: RoleUser}, "name"},
		{"blank name", User{Name: "   ", Email: "ana@example.com", Role: RoleUser}, "name"},
		{"bad email", User{Name: "Ana", Email: "ana", Role: RoleUser}, "email"},
		{"no role", User{Name: "Ana", Email: "ana@example.com"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.user.Validate()
			if tt.field == "" {
				if fields != nil {
					t.Errorf("unexpected errors: %v", fields)
				}
				return
			}
			if len(fields[tt.field]) == 0 {
				t.Errorf("no error for %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestReservationOwnedBy(t *testing.T) {
	r := Reservation{UserID: "u1"}
	if !r.OwnedBy("u1") {
		t.Error("owner not recognised")
	}
	if r.OwnedBy("u2") || (Reservation{}).OwnedBy("") {
		t.Error("ownership granted to a stranger")
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-01-10"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2025-01-10" {
		t.Errorf("date = %s", d)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2025-01-10"` {
		t.Errorf("json = %s", out)
	}

	for _, bad := range []string{`"10/01/2025"`, `"2025-02-30"`, `20250110`} {
		if err := json.Unmarshal([]byte(bad), &d); err == nil {
			t.Errorf("accepted %s", bad)
		}
	}
}

func TestRoleText(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"user", RoleUser, false},
		{"root", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("role = %v, want %v", got, tt.want)
			}
		})
	}
	if Role(0).Valid() {
		t.Error("zero role is valid")
	}
}
