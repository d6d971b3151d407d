package screen

// dialog is the modal error box. Messages queue up and OK dismisses the
// front one.
type dialog struct {
	queue []string
}

func (d *dialog) push(message string) {
	d.queue = append(d.queue, message)
}

func (d *dialog) visible() bool { return len(d.queue) > 0 }

func (d *dialog) message() string {
	if len(d.queue) == 0 {
		return ""
	}
	return d.queue[0]
}

func (d *dialog) dismiss() bool {
	if len(d.queue) == 0 {
		return false
	}
	d.queue = d.queue[1:]
	return true
}
