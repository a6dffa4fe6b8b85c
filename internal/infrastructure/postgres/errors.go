package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
)

// Postgres SQLSTATE codes the store reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// mapError translates pgx errors into the apperror taxonomy. what names the
// relation for messages.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	label := strings.ReplaceAll(strings.TrimPrefix(what, "bonsai_"), "_", " ")
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(singular(label) + " not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperror.Wrap(apperror.KindConflict, err, singular(label)+" already exists")
		case codeForeignKeyViolation:
			return apperror.Wrap(apperror.KindNotFound, err, "referenced row not found")
		case codeInvalidText:
			return apperror.Wrap(apperror.KindNotFound, err, singular(label)+" not found")
		case codeCheckViolation:
			return apperror.Validation(singular(label)+" violates a constraint", map[string]string{"constraint": pgErr.ConstraintName})
		}
		return apperror.Wrap(apperror.KindUnknown, err, "store error")
	}

	var netErr net.Error
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded) {
		return apperror.Upstream(err, "relational store unavailable")
	}
	return apperror.Wrap(apperror.KindUnknown, err, "store error")
}

func singular(table string) string {
	switch {
	case strings.HasSuffix(table, "ies"):
		return strings.TrimSuffix(table, "ies") + "y"
	case strings.HasSuffix(table, "s"):
		return strings.TrimSuffix(table, "s")
	}
	return table
}
