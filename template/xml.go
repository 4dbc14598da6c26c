package template

import "github.com/a-h/templ"

const xmlProlog = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

type marshaler interface {
	Marshal() (string, error)
}

// marshaled renders one of the model's XML fragments as is.
func marshaled(m marshaler) templ.Component {
	s, err := m.Marshal()
	return templ.Raw(s, err)
}
