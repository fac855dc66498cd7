package reservation

import (
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

var (
	ErrNotFound  = httperr.ErrNotFound("reservation_not_found", "Reserva não encontrada.")
	ErrForbidden = httperr.ErrForbidden("not_owner", "Esta reserva não lhe pertence.")

	ErrSlotConflict = httperr.ErrConflict("slot_conflict", "Este horário já está reservado para o barbeiro escolhido.")

	ErrInPast               = httperr.ErrValidation("scheduled_in_past", "A data da reserva tem de ser no futuro.")
	ErrEditWindowExpired    = httperr.ErrValidation("edit_window_expired", "Só é possível alterar reservas até 5 horas antes da marcação.")
	ErrCancelWindowExpired  = httperr.ErrValidation("cancel_window_expired", "Só é possível cancelar reservas até 5 horas antes da marcação.")
	ErrAlreadyCancelled     = httperr.ErrValidation("already_cancelled", "A reserva já se encontra cancelada.")
	ErrNotEditable          = httperr.ErrValidation("reservation_cancelled", "Não é possível alterar uma reserva cancelada.")
	ErrNoChanges            = httperr.ErrValidation("no_changes", "Nenhuma alteração indicada.")
	ErrInvalidInitialStatus = httperr.ErrValidation("invalid_initial_status", "Uma nova reserva só pode ficar pendente ou confirmada.")
	ErrFieldNotEditable     = httperr.ErrForbidden("field_not_editable", "Campo apenas editável pela administração.")

	ErrClientNotFound  = httperr.ErrNotFound("client_not_found", "Cliente não encontrado.")
	ErrBarberNotFound  = httperr.ErrValidation("barber_not_found", "Barbeiro não encontrado.")
	ErrServiceNotFound = httperr.ErrValidation("service_not_found", "Serviço não encontrado.")
)

// ErrClientDoubleBooking names the barber already holding the client's slot.
func ErrClientDoubleBooking(barberName string) error {
	return httperr.ErrConflict(
		"client_double_booking",
		fmt.Sprintf("Já tem uma reserva neste horário com o barbeiro %s.", barberName),
	)
}
