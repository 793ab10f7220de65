package resource

// Filter declares one dropdown a list page may offer. An empty Options list
// means the values come from elsewhere, such as the staff directory.
type Filter struct {
	Key            string
	Label          string
	Options        []string
	SuperAdminOnly bool
}
