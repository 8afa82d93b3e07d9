// Package businessflow contains the core business logic for the rental back-office
package businessflow

import (
	"context"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit trails
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	ActorID   *uint  `json:"actor_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetActorID sets the acting back-office user
func (cm *ClientMetadata) SetActorID(actorID *uint) {
	cm.ActorID = actorID
}

// ActorFromContext extracts the acting user id placed in the context by the
// auth middleware, nil for system calls
func ActorFromContext(ctx context.Context) *uint {
	if id, ok := ctx.Value(utils.ActorIDKey).(uint); ok {
		return &id
	}
	return nil
}

// ToRentalDTO converts a rental model to its API representation
func ToRentalDTO(rental models.Rental) dto.RentalDTO {
	d := dto.RentalDTO{
		ID:             rental.ID,
		UUID:           rental.UUID.String(),
		OrganizationID: rental.OrganizationID,
		NumberID:       rental.NumberID,
		CustomerName:   rental.CustomerName,
		Status:         rental.Status.String(),
		PickupAt:       rental.PickupAt.Format(time.RFC3339),
		DropoffAt:      rental.DropoffAt.Format(time.RFC3339),
		ExpectedKm:     rental.ExpectedKm,
		CreatedAt:      rental.CreatedAt.Format(time.RFC3339),
	}
	if rental.ClosedAt != nil {
		closedAt := rental.ClosedAt.Format(time.RFC3339)
		d.ClosedAt = &closedAt
	}
	return d
}
