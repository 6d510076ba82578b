// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/class-reps/auth"
	"github.com/danielhkuo/class-reps/cliparse"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/models"
	"github.com/danielhkuo/class-reps/roster"
)

var errNoSession = errors.New("missing or invalid session token")

// currentStudent resolves the caller from the X-Session-Token header.
// Returns errNoSession when the token is absent, forged, or names an
// unknown student.
func currentStudent(r *http.Request, cfg cliparse.Config, ros roster.Roster) (models.Student, error) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		return models.Student{}, errNoSession
	}

	userID, err := auth.ParseSessionToken(token, cfg.SessionTokenSalt)
	if err != nil {
		return models.Student{}, errNoSession
	}

	student, err := ros.Student(userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrUnauthorized) {
			return models.Student{}, errNoSession
		}
		return models.Student{}, err
	}
	return student, nil
}
