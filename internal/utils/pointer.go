package utils

// Ptr returns a pointer to v, for optional fields such as ai.Config.JSONMode.
//
//	cfg.JSONMode = utils.Ptr(false)
func Ptr[T any](v T) *T {
	return &v
}
