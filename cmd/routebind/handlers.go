package main

import (
	"net/http"

	"github.com/dmitrymomot/routebind"
	"github.com/dmitrymomot/routebind/pkg/db"
)

type blogHandler struct{}

func (h *blogHandler) Routes(r routebind.Router) {
	r.GET("/users/{user}", h.showUser)
	r.GET("/authors/{author}", h.showAuthor)
	r.GET("/posts/{post}", h.showPost)
	r.GET("/posts/{post}/comments/{comment}", h.showComment)
}

func (h *blogHandler) showUser(c routebind.Context) error {
	user, ok := routebind.Bound[db.Row](c, "user")
	if !ok {
		return routebind.ErrInternal("user is not bound")
	}
	return c.JSON(http.StatusOK, user)
}

// showAuthor answers with a null author instead of 404 for unknown usernames.
func (h *blogHandler) showAuthor(c routebind.Context) error {
	author, _ := c.Bound("author")
	return c.JSON(http.StatusOK, map[string]any{"author": author})
}

func (h *blogHandler) showPost(c routebind.Context) error {
	post, ok := routebind.Bound[db.Row](c, "post")
	if !ok {
		return routebind.ErrInternal("post is not bound")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *blogHandler) showComment(c routebind.Context) error {
	post, _ := c.Bound("post")
	comment, _ := c.Bound("comment")
	return c.JSON(http.StatusOK, map[string]any{
		"post":    post,
		"comment": comment,
	})
}
