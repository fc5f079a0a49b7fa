package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type VariantKind string

const (
	VariantGroupDiscount    VariantKind = "GROUP_DISCOUNT"
	VariantSeasonMembership VariantKind = "SEASON_MEMBERSHIP"
	VariantSingleRacePass   VariantKind = "SINGLE_RACE_PASS"
	VariantWeekendPackage   VariantKind = "WEEKEND_PACKAGE"
)

// Ticket is the core of every variant: identity, owning booking, seat and
// price. Exactly one variant payload is set, selected by Kind.
type Ticket struct {
	ID          string
	BookingID   string
	EventID     string
	SeatNumber  string
	Price       decimal.Decimal
	CheckInTime *time.Time
	Kind        VariantKind

	Group      *GroupDetails
	Membership *MembershipDetails
	Pass       *PassDetails
	Package    *PackageDetails
}

type GroupDetails struct {
	GroupCount int
	GiftItems  []string
}

type MembershipDetails struct {
	MembershipID string
}

type PassDetails struct {
	ExpiresAt time.Time
}

type PackageDetails struct {
	Benefits []string
}

// VariantFields carries the variant-specific inputs of a ticket request.
// Only the fields for the requested kind are consulted.
type VariantFields struct {
	GroupCount   int
	GiftItems    []string
	MembershipID string
	PassExpiry   time.Time
	Benefits     []string
}

// TicketSpec is one requested ticket within a booking. GroupRate, when set on
// a group-discount ticket, adjusts the price at issuance.
type TicketSpec struct {
	Kind       VariantKind
	SeatNumber string
	BasePrice  decimal.Decimal
	GroupRate  *Discount
	Fields     VariantFields
}

// PriceFor derives the ticket price for a variant. A group-discount ticket
// with a supplied Discount pays base*(1-percentage), with the reduction
// capped at the discount's maximum amount. All other variants pay the flat
// base price; their benefits are metadata, not price adjustments.
func PriceFor(base decimal.Decimal, kind VariantKind, d *Discount) decimal.Decimal {
	if kind != VariantGroupDiscount || d == nil {
		return base
	}

	return base.Sub(d.AmountOff(base))
}

// NewTicket builds one tagged variant. It is pure: no shared state is read or
// written, and the ticket id must come from a prior ledger reservation.
func NewTicket(spec TicketSpec, eventID, bookingID, ticketID string) (Ticket, error) {
	if eventID == "" {
		return Ticket{}, fmt.Errorf("%w: event id is required on every variant", ErrInvalidVariantFields)
	}

	t := Ticket{
		ID:         ticketID,
		BookingID:  bookingID,
		EventID:    eventID,
		SeatNumber: spec.SeatNumber,
		Price:      PriceFor(spec.BasePrice, spec.Kind, spec.GroupRate),
		Kind:       spec.Kind,
	}

	switch spec.Kind {
	case VariantGroupDiscount:
		if spec.Fields.GroupCount <= 0 {
			return Ticket{}, fmt.Errorf("%w: group count must be positive", ErrInvalidVariantFields)
		}
		t.Group = &GroupDetails{
			GroupCount: spec.Fields.GroupCount,
			GiftItems:  spec.Fields.GiftItems,
		}
	case VariantSeasonMembership:
		if spec.Fields.MembershipID == "" {
			return Ticket{}, fmt.Errorf("%w: membership id is required", ErrInvalidVariantFields)
		}
		t.Membership = &MembershipDetails{MembershipID: spec.Fields.MembershipID}
	case VariantSingleRacePass:
		if spec.Fields.PassExpiry.IsZero() {
			return Ticket{}, fmt.Errorf("%w: pass expiry is required", ErrInvalidVariantFields)
		}
		t.Pass = &PassDetails{ExpiresAt: spec.Fields.PassExpiry}
	case VariantWeekendPackage:
		if len(spec.Fields.Benefits) == 0 {
			return Ticket{}, fmt.Errorf("%w: weekend package needs at least one benefit", ErrInvalidVariantFields)
		}
		t.Package = &PackageDetails{Benefits: spec.Fields.Benefits}
	default:
		return Ticket{}, fmt.Errorf("%w: unknown variant kind %q", ErrInvalidVariantFields, spec.Kind)
	}

	return t, nil
}

// CheckIn stamps the ticket once. A checked-in ticket is immutable.
func (t *Ticket) CheckIn(at time.Time) error {
	if t.CheckInTime != nil {
		return fmt.Errorf("ticket %s already checked in at %s", t.ID, t.CheckInTime.Format(time.RFC3339))
	}

	t.CheckInTime = &at
	return nil
}
