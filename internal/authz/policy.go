// Package authz decide quem pode fazer o quê. Can é total e não tem efeitos colaterais;
// quem chama transforma false em PermissionDenied.
package authz

import "github.com/mateusmacedo/go-reservas/internal/domain"

// Actor é o usuário autenticado que executa a operação.
type Actor struct {
	ID   string
	Role domain.Role
}

func (a Actor) Valid() bool {
	return a.ID != "" && a.Role.Valid()
}

func (a Actor) IsAdmin() bool {
	return a.Valid() && a.Role == domain.RoleAdmin
}

type Action uint8

const (
	TripList Action = iota + 1
	TripView
	TripCreate
	TripUpdate
	TripDelete

	ReservationList
	ReservationView
	ReservationCreate
	ReservationUpdate
	ReservationDelete
	// ReservationManage cobre as rotas /reservas/admin.
	ReservationManage

	UserList
	UserView
	UserCreate
	UserUpdate
	// UserDelete é a exclusão de outro usuário pelo administrador.
	UserDelete

	ProfileView
	ProfileUpdate
	// AccountDelete é a exclusão da própria conta.
	AccountDelete
)

var actionNames = map[Action]string{
	TripList:          "trip.list",
	TripView:          "trip.view",
	TripCreate:        "trip.create",
	TripUpdate:        "trip.update",
	TripDelete:        "trip.delete",
	ReservationList:   "reservation.list",
	ReservationView:   "reservation.view",
	ReservationCreate: "reservation.create",
	ReservationUpdate: "reservation.update",
	ReservationDelete: "reservation.delete",
	ReservationManage: "reservation.manage",
	UserList:          "user.list",
	UserView:          "user.view",
	UserCreate:        "user.create",
	UserUpdate:        "user.update",
	UserDelete:        "user.delete",
	ProfileView:       "profile.view",
	ProfileUpdate:     "profile.update",
	AccountDelete:     "account.delete",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Can informa se actor pode executar action sobre um recurso de ownerID.
// ownerID é o dono da reserva, o usuário alvo ou vazio quando não se aplica.
func Can(actor Actor, action Action, ownerID string) bool {
	if !actor.Valid() {
		return false
	}

	switch action {
	case TripCreate, TripUpdate, TripDelete:
		return actor.Role == domain.RoleAdmin
	case TripList, TripView:
		return true
	case ReservationList, ReservationCreate:
		// a listagem e a criação são sempre do próprio usuário, salvo para o admin
		return actor.Role == domain.RoleAdmin || ownerID == "" || ownerID == actor.ID
	case ReservationView, ReservationUpdate, ReservationDelete:
		return actor.Role == domain.RoleAdmin || (ownerID != "" && ownerID == actor.ID)
	case ReservationManage:
		return actor.Role == domain.RoleAdmin
	case UserList, UserView, UserCreate, UserUpdate:
		return actor.Role == domain.RoleAdmin
	case UserDelete:
		return actor.Role == domain.RoleAdmin && ownerID != actor.ID
	case ProfileView, ProfileUpdate:
		return ownerID == actor.ID || actor.Role == domain.RoleAdmin
	case AccountDelete:
		return actor.Role != domain.RoleAdmin && (ownerID == "" || ownerID == actor.ID)
	default:
		return false
	}
}
