package auth

import "github.com/openshelf/openshelf/internal/entities"

// Operation names a privileged action checked against the policy table.
type Operation string

const (
	OpManageCatalog    Operation = "catalog.manage"
	OpIssueBook        Operation = "circulation.issue"
	OpReturnBook       Operation = "circulation.return"
	OpViewCirculation  Operation = "circulation.view"
	OpMarkFinePaid     Operation = "fines.mark_paid"
	OpWaiveFine        Operation = "fines.waive"
	OpEditFineSettings Operation = "fines.edit_settings"
	OpManageUsers      Operation = "users.manage"
	OpManageHolds      Operation = "reservations.manage"
	OpViewActivityLog  Operation = "activity.view"
	OpExportReports    Operation = "reports.export"
)

// policy is the single authorization table: every privileged operation and
// the roles allowed to perform it. Handlers go through Allowed (usually via
// Middleware.RequirePermission) instead of checking roles ad hoc.
var policy = map[Operation][]entities.UserRole{
	OpManageCatalog:    {entities.UserRoleAdmin, entities.UserRoleLibrarian},
	OpIssueBook:        {entities.UserRoleAdmin, entities.UserRoleLibrarian},
	OpReturnBook:       {entities.UserRoleAdmin, entities.UserRoleLibrarian},
	OpViewCirculation:  {entities.UserRoleAdmin, entities.UserRoleLibrarian},
	OpMarkFinePaid:     {entities.UserRoleAdmin, entities.UserRoleLibrarian},
	OpWaiveFine:        {entities.UserRoleAdmin},
	OpEditFineSettings: {entities.UserRoleAdmin},
	OpManageUsers:      {entities.UserRoleAdmin},
	OpManageHolds:      {entities.UserRoleAdmin, entities.UserRoleLibrarian},
	OpViewActivityLog:  {entities.UserRoleAdmin},
	OpExportReports:    {entities.UserRoleAdmin, entities.UserRoleLibrarian},
}

// Allowed reports whether the role may perform the operation. Unknown
// operations are denied.
func Allowed(role entities.UserRole, op Operation) bool {
	for _, allowed := range policy[op] {
		if role == allowed {
			return true
		}
	}
	return false
}
