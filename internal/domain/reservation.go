package domain

import "time"

// Reservation reserva Seats lugares de uma viagem para o usuário UserID.
type Reservation struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	TripID    string    `json:"viagem_id" gorm:"column:viagem_id;size:36;not null;index"`
	Seats     int       `json:"lugares" gorm:"column:lugares;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Trip      *Trip     `json:"viagem,omitempty" gorm:"foreignKey:TripID"`
}

func (Reservation) TableName() string {
	return "reservas"
}

func (r Reservation) OwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

func (r Reservation) Validate() map[string][]string {
	fields := make(map[string][]string)
	if r.TripID == "" {
		fields["viagem_id"] = append(fields["viagem_id"], "O campo viagem id é obrigatório.")
	}
	if r.UserID == "" {
		fields["user_id"] = append(fields["user_id"], "O campo user id é obrigatório.")
	}
	if r.Seats < 1 {
		fields["lugares"] = append(fields["lugares"], "O campo lugares deve ser pelo menos 1.")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
