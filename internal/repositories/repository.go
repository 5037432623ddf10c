package repositories

import (
	"rigbook/internal/database"
)

type Repository struct {
	Booking        BookingRepository
	ClientApproval ClientApprovalRepository
	Assignment     AssignmentRepository
	Contractor     ContractorRepository
}

func New(db database.DB) Repository {
	return Repository{
		Booking:        NewBookingRepository(db),
		ClientApproval: NewClientApprovalRepository(db),
		Assignment:     NewAssignmentRepository(db),
		Contractor:     NewContractorRepository(db), // contractor repo caches the active roster
	}
}
