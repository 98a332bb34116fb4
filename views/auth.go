package views

import (
	"context"

	"github.com/a-h/templ"
	"github.com/oliverisaac/clarity/types"
)

func formError(h *html, err error) {
	if err != nil {
		h.rawf(`<p class="error">%s</p>`, esc(err.Error()))
	}
}

func SignInForm(fd *types.FormData) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section class="card auth"><h2>Welcome back</h2>`)
		formError(h, fd.Error)
		h.raw(`<form method="post" action="/auth/sign-in">`)
		h.raw(`<label>Email <input type="email" name="email" required autofocus></label>`)
		h.raw(`<label>Password <input type="password" name="password" required></label>`)
		h.raw(`<button type="submit">Sign in</button></form>`)
		if fd.SignupOpen() {
			h.raw(`<p><a href="/auth/sign-up">New here? Create an account</a></p>`)
		}
		h.raw(`</section>`)
	})
}

func SignUpForm(fd *types.FormData) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section class="card auth"><h2>Create your space</h2>`)
		formError(h, fd.Error)
		h.raw(`<form method="post" action="/auth/sign-up">`)
		h.raw(`<label>Name <input type="text" name="name" required autofocus></label>`)
		h.raw(`<label>Email <input type="email" name="email" required></label>`)
		h.raw(`<label>Password <input type="password" name="password" minlength="8" required></label>`)
		h.raw(`<button type="submit">Sign up</button></form>`)
		h.raw(`<p><a href="/auth/sign-in">Already have an account?</a></p></section>`)
	})
}
