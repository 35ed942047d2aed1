package stage

// Health reports whether a stage's external prerequisites (workbook, artwork
// tree, renderer and converter binaries) are in place before a run starts.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy marks a stage as ready to run.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy marks a stage as not runnable, with a detail naming the missing
// prerequisite.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
