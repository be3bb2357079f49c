package service

import (
	"bazaar/internal/model"

	"github.com/google/uuid"
)

// ResourceKind selects the rule Authorize applies.
type ResourceKind int

const (
	// OwnedByUser resources may only be touched by the user that owns them.
	OwnedByUser ResourceKind = iota
	// OwnedByUserOrStaff resources are also visible to staff.
	OwnedByUserOrStaff
	// OwnedByVendor resources belong to the vendor that listed them.
	OwnedByVendor
	// StaffOnly resources are managed by staff.
	StaffOnly
	// VendorOnly operations need a vendor account but no particular owner.
	VendorOnly
)

// Resource is something an actor wants to act on.
type Resource struct {
	Kind    ResourceKind
	OwnerID uuid.UUID
}

// Authorize returns model.ErrForbidden unless actor may act on r.
func Authorize(actor model.Actor, r Resource) error {
	if actor.UserID == uuid.Nil {
		return model.ErrUnauthorised
	}

	var ok bool
	switch r.Kind {
	case OwnedByUser:
		ok = r.OwnerID == actor.UserID
	case OwnedByUserOrStaff:
		ok = r.OwnerID == actor.UserID || actor.IsStaff
	case OwnedByVendor:
		ok = actor.IsVendor && r.OwnerID == actor.UserID
	case StaffOnly:
		ok = actor.IsStaff
	case VendorOnly:
		ok = actor.IsVendor
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

// authorizeLookup is Authorize for single-resource reads and writes, where a
// refusal is reported as notFound so existence does not leak.
func authorizeLookup(actor model.Actor, r Resource, notFound error) error {
	if err := Authorize(actor, r); err != nil {
		if err == model.ErrUnauthorised {
			return err
		}
		return notFound
	}
	return nil
}
