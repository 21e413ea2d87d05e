// Package element contains all HTTP handlers for the Element resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (storage)
//  2. Returns a function with the exact signature the router needs
//
// Because the inner function "closes over" the outer parameters, it can
// access `storage` even after the factory call has returned.
//
// AUTHORIZATION is NOT handled here. The write handlers assume the
// middleware chain (Authenticate → RequireAdmin) already ran; read
// handlers are registered without any middleware at all.
package element

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/EnderPico/TabelaPeriodica/internal/storage"
	"github.com/EnderPico/TabelaPeriodica/internal/types"
	"github.com/EnderPico/TabelaPeriodica/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /elements
// Returns a JSON array of all elements in the database. Public — no token
// needed to browse the periodic table.
//
// Returns an empty array [] (not null) when there are no elements.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.ElementStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all elements")

		elements, err := store.GetElements()
		if err != nil {
			slog.Error("error getting elements", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, elements)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetBySymbol handles GET /elements/{symbol}
// Looks an element up by chemical symbol, case-insensitively: /elements/h
// and /elements/H return the identical record. Public.
//
// Error responses:
//
//	404 Not Found — no element with that symbol
//
// ─────────────────────────────────────────────────────────────────────────────
func GetBySymbol(store storage.ElementStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.PathValue("symbol") extracts the {symbol} segment from the URL.
		// This works because Go 1.22+ supports named path parameters in
		// the ServeMux pattern: "GET /elements/{symbol}"
		symbol := r.PathValue("symbol")
		slog.Info("getting an element", slog.String("symbol", symbol))

		el, err := store.GetElementBySymbol(symbol)
		if err != nil {
			writeStoreError(w, symbol, 0, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, el)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /elements  (admin only)
// Creates a new element from the JSON request body.
//
// Request body (JSON):
//
//	{ "symbol": "O", "name": "Oxygen", "number": 8, "info": "..." }
//
// Success response (201 Created):
//
//	{ "message": "Element 'O' created successfully", "element": { ... } }
//
// Error responses:
//
//	400 Bad Request    — empty body, malformed JSON, duplicate symbol/number
//	422 Unprocessable  — validation failure (shape or character rules)
//
// The duplicate checks run symbol first, number second: a payload that
// collides on both is reported as a symbol conflict.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.ElementStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating an element")

		// ── Step 1: Decode JSON body ──────────────────────────────────
		var el types.Element
		err := json.NewDecoder(r.Body).Decode(&el)
		if errors.Is(err, io.EOF) {
			// io.EOF means the body was completely empty — nothing to decode.
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// ── Step 2: Validate shape, then canonicalize ─────────────────
		// validator checks the tag rules (required, lengths, 1–118);
		// Normalize checks character classes and uppercases the symbol /
		// title-cases the name so the store only sees canonical values.
		if err := validator.New().Struct(el); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.ValidationError(validateErrs))
			return
		}
		if err := el.Normalize(); err != nil {
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.GeneralError(err))
			return
		}

		// ── Step 3: Persist ───────────────────────────────────────────
		created, err := store.CreateElement(el)
		if err != nil {
			writeStoreError(w, el.Symbol, el.Number, err)
			return
		}

		slog.Info("element created",
			slog.String("symbol", created.Symbol),
			slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, types.ElementResponse{
			Message: fmt.Sprintf("Element '%s' created successfully", created.Symbol),
			Element: created,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /elements/{symbol}  (admin only)
// Applies a PARTIAL update: only the fields present in the body change.
//
// Request body (JSON) — every field optional:
//
//	{ "info": "Updated description" }
//
// Success response (200 OK):
//
//	{ "message": "Element 'H' updated successfully", "element": { ... } }
//
// Error responses:
//
//	404 Not Found      — no element with that symbol
//	400 Bad Request    — new symbol/number collides with ANOTHER element
//	422 Unprocessable  — validation failure
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.ElementStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.PathValue("symbol")
		slog.Info("updating an element", slog.String("symbol", symbol))

		var patch types.ElementPatch
		err := json.NewDecoder(r.Body).Decode(&patch)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(patch); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.ValidationError(validateErrs))
			return
		}
		if err := patch.Normalize(); err != nil {
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.GeneralError(err))
			return
		}

		updated, err := store.UpdateElement(symbol, patch)
		if err != nil {
			// A duplicate-symbol conflict on update names the REQUESTED new
			// symbol, not the one in the URL; same idea for the number.
			conflictSymbol := symbol
			if errors.Is(err, storage.ErrDuplicateSymbol) && patch.Symbol != nil {
				conflictSymbol = *patch.Symbol
			}
			conflictNumber := 0
			if patch.Number != nil {
				conflictNumber = *patch.Number
			}
			writeStoreError(w, conflictSymbol, conflictNumber, err)
			return
		}

		slog.Info("element updated", slog.String("symbol", updated.Symbol))
		response.WriteJSON(w, http.StatusOK, types.ElementResponse{
			Message: fmt.Sprintf("Element '%s' updated successfully", updated.Symbol),
			Element: updated,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /elements/{symbol}  (admin only)
// Permanently removes an element, confirming with the deleted symbol.
//
// Success response (200 OK):
//
//	{ "message": "Element 'H' deleted successfully", "symbol": "H" }
//
// Error responses:
//
//	404 Not Found — no element with that symbol
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.ElementStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.PathValue("symbol")
		slog.Info("deleting an element", slog.String("symbol", symbol))

		deleted, err := store.DeleteElement(symbol)
		if err != nil {
			writeStoreError(w, symbol, 0, err)
			return
		}

		slog.Info("element deleted", slog.String("symbol", deleted))
		response.WriteJSON(w, http.StatusOK, types.DeleteResponse{
			Message: fmt.Sprintf("Element '%s' deleted successfully", deleted),
			Symbol:  deleted,
		})
	}
}

// writeStoreError maps storage sentinel errors onto HTTP responses with
// messages that name the offending value:
//
//	ErrElementNotFound → 404 "Element with symbol 'X' not found"
//	ErrDuplicateSymbol → 400 "Element with symbol 'X' already exists"
//	ErrDuplicateNumber → 400 "Element with atomic number N already exists"
//	anything else      → 500, logged
//
// symbol is the value from the request (used for not-found/duplicate
// symbol messages); number supplies the value for number conflicts.
func writeStoreError(w http.ResponseWriter, symbol string, number int, err error) {
	switch {
	case errors.Is(err, storage.ErrElementNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(
			fmt.Errorf("Element with symbol '%s' not found", symbol)))
	case errors.Is(err, storage.ErrDuplicateSymbol):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
			fmt.Errorf("Element with symbol '%s' already exists", symbol)))
	case errors.Is(err, storage.ErrDuplicateNumber):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
			fmt.Errorf("Element with atomic number %d already exists", number)))
	default:
		slog.Error("element storage error", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(err))
	}
}
