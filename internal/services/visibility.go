package services

import (
	"github.com/P3chys/exchange-api/internal/models"
)

// Caller is the resolved identity of the user behind a request.
// OrganizationID 0 means the user belongs to no organization.
type Caller struct {
	UserID         int
	RoleID         models.Role
	OrganizationID int
}

func (c Caller) affiliated() bool {
	return c.OrganizationID != 0
}

func isAdministrator(c Caller) bool {
	return c.RoleID == models.RoleAdministrator
}

func isOrganizationOwner(programOrganizationID, callerOrganizationID int) bool {
	return callerOrganizationID != 0 && programOrganizationID == callerOrganizationID
}

type roleClass int

const (
	classAdministrator roleClass = iota
	classOrganization
	classOther
)

func classify(c Caller) roleClass {
	switch {
	case isAdministrator(c):
		return classAdministrator
	case c.RoleID == models.RoleOrganization:
		return classOrganization
	default:
		return classOther
	}
}

type audience struct {
	class      roleClass
	affiliated bool
}

// applicationScope carries what an application predicate may consult.
type applicationScope struct {
	caller      Caller
	ownsProgram map[int]bool
}

type applicationRule func(applicationScope) func(models.Application) bool

var applicationRules = map[audience]applicationRule{
	{classAdministrator, true}:  allApplications,
	{classOrganization, true}:   organizationApplications,
	{classOther, true}:          ownApplications,
	{classAdministrator, false}: allApplications,
	{classOrganization, false}:  allApplications,
	{classOther, false}:         ownApplications,
}

func allApplications(applicationScope) func(models.Application) bool {
	return func(models.Application) bool { return true }
}

func organizationApplications(s applicationScope) func(models.Application) bool {
	return func(a models.Application) bool { return s.ownsProgram[a.ProgramID] }
}

func ownApplications(s applicationScope) func(models.Application) bool {
	return func(a models.Application) bool {
		return a.StudentID == s.caller.UserID && a.StatusID != models.StatusDeleted
	}
}

// FilterApplications returns the applications caller may see, in input order.
// programs is the full program catalog, used to decide which programs the
// caller's organization owns.
func FilterApplications(caller Caller, applications []models.Application, programs []models.ExchangeProgram) []models.Application {
	scope := applicationScope{caller: caller, ownsProgram: make(map[int]bool)}
	for _, p := range programs {
		if isOrganizationOwner(p.OrganizationID, caller.OrganizationID) {
			scope.ownsProgram[p.ID] = true
		}
	}

	rule := applicationRules[audience{classify(caller), caller.affiliated()}]
	return filter(applications, rule(scope))
}

type programRule func(Caller) func(models.ExchangeProgram) bool

var programRules = map[audience]programRule{
	{classAdministrator, true}:  allPrograms,
	{classOrganization, true}:   organizationPrograms,
	{classOther, true}:          organizationPrograms,
	{classAdministrator, false}: allPrograms,
	{classOrganization, false}:  allPrograms,
	{classOther, false}:         allPrograms,
}

func allPrograms(Caller) func(models.ExchangeProgram) bool {
	return func(models.ExchangeProgram) bool { return true }
}

func organizationPrograms(c Caller) func(models.ExchangeProgram) bool {
	return func(p models.ExchangeProgram) bool {
		return isOrganizationOwner(p.OrganizationID, c.OrganizationID)
	}
}

// FilterExchangePrograms returns the programs caller may see, in input order.
// callerApplications are the caller's own applications; a pending one hides
// every program.
func FilterExchangePrograms(caller Caller, programs []models.ExchangeProgram, callerApplications []models.Application) []models.ExchangeProgram {
	if hasPendingApplication(caller, callerApplications) {
		return []models.ExchangeProgram{}
	}

	rule := programRules[audience{classify(caller), caller.affiliated()}](caller)
	return filter(programs, func(p models.ExchangeProgram) bool {
		return rule(p) && p.StatusID != models.StatusDeleted
	})
}

func hasPendingApplication(caller Caller, applications []models.Application) bool {
	for _, a := range applications {
		if a.StudentID == caller.UserID && a.StatusID == models.StatusPending {
			return true
		}
	}
	return false
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
