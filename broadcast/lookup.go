package broadcast

// SourceHolder is implemented by check implementations that are themselves
// data sources, exposing the nested source instance they re-broadcast
// through. Find descends through it.
type SourceHolder interface {
	Source() *SourceInstance
}

// Find searches the instance tree rooted at root depth-first and returns the
// first check instance whose type name matches, or nil. Subscribers whose
// implementation holds a nested source are descended into, which lets
// composed checks reach into a filter's state.
func Find(root *SourceInstance, name string) *CheckInstance {
	if root == nil {
		return nil
	}
	for _, ci := range root.subs {
		if ci.typ.name == name {
			return ci
		}
		if holder, ok := ci.impl.(SourceHolder); ok {
			if found := Find(holder.Source(), name); found != nil {
				return found
			}
		}
	}
	return nil
}
