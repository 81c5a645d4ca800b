package auth

import (
	"github.com/sahilchouksey/mindmeld-api/model"
)

// Resource names a protected area of the API
type Resource string

// Action names an operation on a resource. The *Any actions apply to
// records owned by other users.
type Action string

const (
	ResourceUsers       Resource = "users"
	ResourceProducts    Resource = "products"
	ResourceCategories  Resource = "categories"
	ResourceEnrollments Resource = "enrollments"
	ResourceOrders      Resource = "orders"
	ResourceFeedback    Resource = "feedback"
	ResourceMessages    Resource = "messages"
	ResourceActivities  Resource = "activities"
)

const (
	ActionRead      Action = "read"
	ActionWrite     Action = "write"
	ActionDelete    Action = "delete"
	ActionReadAny   Action = "read_any"
	ActionWriteAny  Action = "write_any"
	ActionDeleteAny Action = "delete_any"
)

// Permission represents a single resource-action pair
type Permission struct {
	Resource Resource
	Action   Action
}

// own is the set every authenticated role holds on its own records
var own = []Permission{
	{ResourceProducts, ActionRead},
	{ResourceCategories, ActionRead},
	{ResourceEnrollments, ActionRead},
	{ResourceEnrollments, ActionWrite},
	{ResourceOrders, ActionRead},
	{ResourceOrders, ActionWrite},
	{ResourceFeedback, ActionRead},
	{ResourceFeedback, ActionWrite},
	{ResourceMessages, ActionRead},
	{ResourceMessages, ActionWrite},
	{ResourceMessages, ActionDelete},
}

var policyTable = map[string][]Permission{
	model.RoleUser: own,
	model.RoleManager: append(append([]Permission{}, own...),
		Permission{ResourceUsers, ActionReadAny},
	),
	model.RoleAdmin: append(append([]Permission{}, own...),
		Permission{ResourceUsers, ActionReadAny},
		Permission{ResourceUsers, ActionWriteAny},
		Permission{ResourceUsers, ActionDeleteAny},
		Permission{ResourceProducts, ActionWrite},
		Permission{ResourceProducts, ActionDelete},
		Permission{ResourceCategories, ActionWrite},
		Permission{ResourceCategories, ActionDelete},
		Permission{ResourceEnrollments, ActionReadAny},
		Permission{ResourceEnrollments, ActionWriteAny},
		Permission{ResourceOrders, ActionReadAny},
		Permission{ResourceOrders, ActionWriteAny},
		Permission{ResourceFeedback, ActionReadAny},
		Permission{ResourceFeedback, ActionDeleteAny},
		Permission{ResourceActivities, ActionReadAny},
	),
}

// messageRecipients maps a sender role to the roles it may address
var messageRecipients = map[string][]string{
	model.RoleUser:    {model.RoleAdmin},
	model.RoleManager: {model.RoleAdmin},
	model.RoleAdmin:   {model.RoleUser, model.RoleManager},
}

// Can reports whether role may perform action on resource
func Can(role string, resource Resource, action Action) bool {
	for _, p := range policyTable[role] {
		if p.Resource == resource && p.Action == action {
			return true
		}
	}
	return false
}

// CanActOn reports whether a caller may touch a record owned by ownerID.
// Owners always may; others need the matching *Any permission.
func CanActOn(caller *model.User, ownerID uint, resource Resource, anyAction Action) bool {
	if caller == nil {
		return false
	}
	return caller.ID == ownerID || Can(caller.Role, resource, anyAction)
}

// CanMessage reports whether a sender with role from may message a recipient with role to
func CanMessage(from, to string) bool {
	for _, r := range messageRecipients[from] {
		if r == to {
			return true
		}
	}
	return false
}

// MessageRecipientRoles returns the roles a sender may address
func MessageRecipientRoles(from string) []string {
	return append([]string(nil), messageRecipients[from]...)
}
