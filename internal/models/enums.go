package models

// Status is shared by applications, exchange programs and their documents.
type Status int

const (
	StatusActive    Status = 1
	StatusPending   Status = 2
	StatusApproved  Status = 3
	StatusRejected  Status = 4
	StatusCancelled Status = 5
	StatusClosed    Status = 6
	StatusDeleted   Status = 7
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusCancelled:
		return "cancelled"
	case StatusClosed:
		return "closed"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

type Role int

const (
	RoleAdministrator Role = 1
	RoleOrganization  Role = 2
	RoleStudent       Role = 3
)

// DocumentType tells the two document lists of an application apart.
type DocumentType int

const (
	DocumentTypeApplication DocumentType = 1
	DocumentTypeRequired    DocumentType = 2
)
