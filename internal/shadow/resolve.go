package shadow

// resolveOrDelegate builds from the local value when it is set and asks the
// delegate otherwise. Blueprint and criterion resolution both go through
// here so their precedence is the same.
func resolveOrDelegate[S, T any](local *S, build func(*S) (T, error), delegate func() (T, error)) (T, error) {
	if local != nil {
		return build(local)
	}
	return delegate()
}
