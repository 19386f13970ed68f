package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLength = 255

// User é a conta de acesso. O hash da senha nunca sai no JSON.
type User struct {
	ID           string        `json:"id" gorm:"primaryKey;size:36"`
	Name         string        `json:"name" gorm:"size:255;not null"`
	Email        string        `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string        `json:"-" gorm:"column:password;not null"`
	Role         Role          `json:"role" gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Reservations []Reservation `json:"reservas,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser é a forma curta devolvida junto com o token no login e no registro.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Validate confere nome, e-mail e papel. A senha é conferida antes do hash.
func (u User) Validate() map[string][]string {
	fields := make(map[string][]string)
	if strings.TrimSpace(u.Name) == "" {
		fields["name"] = append(fields["name"], "O campo name é obrigatório.")
	} else if utf8.RuneCountInString(u.Name) > maxNameLength {
		fields["name"] = append(fields["name"], "O campo name não pode ter mais de 255 caracteres.")
	}
	if u.Email == "" {
		fields["email"] = append(fields["email"], "O campo email é obrigatório.")
	} else if !strings.Contains(u.Email, "@") {
		fields["email"] = append(fields["email"], "O campo email deve ser um endereço de e-mail válido.")
	}
	if !u.Role.Valid() {
		fields["role"] = append(fields["role"], "O campo role selecionado é inválido.")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
