// Package api maps the /todos HTTP routes onto a task.Store.
package api

import (
	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/web"
)

// Error messages of the 500 envelope, one per operation
const (
	MsgCreateFailed = "Error creating task"
	MsgListFailed   = "Error fetching tasks"
	MsgUpdateFailed = "Error updating task"
	MsgDeleteFailed = "Error deleting task"

	MsgDeleted = "Task deleted successfully"
)

// ErrorResponse is the body of every failed operation
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// MessageResponse is the body of a successful delete
type MessageResponse struct {
	Message string `json:"message"`
}

// Handler serves the todo routes
type Handler struct {
	store task.Store
}

// NewHandler creates a handler over store
func NewHandler(store task.Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the routes under prefix (e.g. "/api")
func Register(router *web.FastRouter, prefix string, store task.Store) *Handler {
	h := NewHandler(store)
	g := router.Group(prefix)
	g.POSTFast("/todos", h.Create)
	g.GETFast("/todos", h.List)
	g.PUTFast("/todos/:id", h.Update)
	g.DELETEFast("/todos/:id", h.Delete)
	return h
}

// Create handles POST /todos
func (h *Handler) Create(ctx *web.FastRequestContext) error {
	var d task.Draft
	if err := bindOptional(ctx, &d); err != nil {
		return fail(ctx, MsgCreateFailed, err)
	}

	created, err := h.store.Create(ctx.Context(), d)
	if err != nil {
		return fail(ctx, MsgCreateFailed, err)
	}
	return ctx.JSON(201, created)
}

// List handles GET /todos
func (h *Handler) List(ctx *web.FastRequestContext) error {
	tasks, err := h.store.List(ctx.Context())
	if err != nil {
		return fail(ctx, MsgListFailed, err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(200, tasks)
}

// Update handles PUT /todos/:id. An unknown id answers 200 with null.
func (h *Handler) Update(ctx *web.FastRequestContext) error {
	var p task.Patch
	if err := bindOptional(ctx, &p); err != nil {
		return fail(ctx, MsgUpdateFailed, err)
	}

	updated, err := h.store.Update(ctx.Context(), ctx.Param("id"), p)
	if err != nil {
		return fail(ctx, MsgUpdateFailed, err)
	}
	if updated == nil {
		return ctx.RawJSON(200, []byte("null"))
	}
	return ctx.JSON(200, updated)
}

// Delete handles DELETE /todos/:id. Deleting an unknown id succeeds.
func (h *Handler) Delete(ctx *web.FastRequestContext) error {
	if err := h.store.Delete(ctx.Context(), ctx.Param("id")); err != nil {
		return fail(ctx, MsgDeleteFailed, err)
	}
	return ctx.JSON(200, MessageResponse{Message: MsgDeleted})
}

// bindOptional decodes the JSON body into v; an empty body leaves v zero
func bindOptional(ctx *web.FastRequestContext, v interface{}) error {
	if !ctx.HasBody() {
		return nil
	}
	return ctx.BindJSON(v)
}

func fail(ctx *web.FastRequestContext, msg string, err error) error {
	ctx.Logger().Errorf("%s: %v", msg, err)
	return ctx.JSON(500, ErrorResponse{Message: msg, Error: err.Error()})
}
