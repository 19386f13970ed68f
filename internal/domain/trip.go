package domain

import (
	"time"
	"unicode/utf8"
)

const (
	maxDestinationLength = 255
	// MaxPrice cabe em numeric(10,2).
	MaxPrice = 99999999.99
)

// Trip é uma viagem publicada por um administrador.
type Trip struct {
	ID            string        `json:"id" gorm:"primaryKey;size:36"`
	Destination   string        `json:"destino" gorm:"column:destino;size:255;not null"`
	DepartureDate Date          `json:"data_partida" gorm:"column:data_partida;not null"`
	ReturnDate    Date          `json:"data_regresso" gorm:"column:data_regresso;not null"`
	Price         float64       `json:"preco" gorm:"column:preco;type:numeric(10,2);not null"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Reservations  []Reservation `json:"reservas,omitempty" gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
}

func (Trip) TableName() string {
	return "viagens"
}

// Validate confere as regras de campo. O regresso pode ser no mesmo dia da partida.
func (t Trip) Validate() map[string][]string {
	fields := make(map[string][]string)
	if t.Destination == "" {
		fields["destino"] = append(fields["destino"], "O campo destino é obrigatório.")
	} else if utf8.RuneCountInString(t.Destination) > maxDestinationLength {
		fields["destino"] = append(fields["destino"], "O campo destino não pode ter mais de 255 caracteres.")
	}
	if t.DepartureDate.IsZero() {
		fields["data_partida"] = append(fields["data_partida"], "O campo data partida é obrigatório.")
	}
	if t.ReturnDate.IsZero() {
		fields["data_regresso"] = append(fields["data_regresso"], "O campo data regresso é obrigatório.")
	} else if !t.DepartureDate.IsZero() && t.ReturnDate.Before(t.DepartureDate) {
		fields["data_regresso"] = append(fields["data_regresso"], "O campo data regresso deve ser uma data posterior ou igual a data partida.")
	}
	if t.Price < 0 {
		fields["preco"] = append(fields["preco"], "O campo preco deve ser pelo menos 0.")
	} else if t.Price > MaxPrice {
		fields["preco"] = append(fields["preco"], "O campo preco não pode ser superior a 99999999.99.")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
