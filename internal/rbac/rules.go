package rbac

// Default policy for the portal. Students only ever see their own rows; the
// scoping itself happens in the handlers, these permissions gate the routes.
var RolePermissions = map[string][]string{
	"student": {
		"cbt:attempt",
		"cbt:submit",
		"results:view-own",
		"attendance:view-own",
		"fees:view-own",
		"news:view",
		"photos:view",
		"dashboard:view",
	},
	"teacher": {
		"results:view-all",
		"news:view",
		"photos:view",
		"dashboard:view",
	},
	"admin": {
		"*", // everything
	},
}
