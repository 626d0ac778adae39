/*
Package dsl provides a fluent builder for constructing flows in Go.

It is useful for tests, fixtures and hand-authored flows that should go
through the same normalization and layout as generated ones.

Example usage:

	b := dsl.New()

	b.Add("start").Start("Start").Go("greet")
	b.Add("greet").Message("Bot", "Hello! Are you happy?").Go("ask")
	b.Add("ask").Decision("happy?", "yes", "no").
		Branch("yes", "end").
		Branch("no", "greet").Animated()
	b.Add("end").End("End")

	flow, err := b.Build()
*/
package dsl
