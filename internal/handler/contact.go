package handler

import (
	"net/http"

	"agenda/internal/middleware"
	"agenda/internal/model"
	"agenda/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactHandler serves the contact book
type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List returns the contacts visible to the caller
// @Router /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	list, err := h.contacts.List(c.Request.Context(), middleware.Requester(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("", list))
}

// Create adds a private contact owned by the caller
// @Router /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req model.ContactRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), middleware.Requester(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Contact created", contact))
}

// Update replaces the editable fields of a contact
// @Router /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	var req model.ContactRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), middleware.Requester(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Contact updated", contact))
}

// Delete removes a contact
// @Router /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), middleware.Requester(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Contact deleted", nil))
}

// TogglePublic switches a contact between private and public
// @Router /contacts/{id}/visibility [patch]
func (h *ContactHandler) TogglePublic(c *gin.Context) {
	contact, err := h.contacts.TogglePublic(c.Request.Context(), middleware.Requester(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Visibility updated", contact))
}

// ToggleAdminVisible hides or shows a public contact
// @Router /contacts/{id}/admin-visibility [patch]
func (h *ContactHandler) ToggleAdminVisible(c *gin.Context) {
	contact, err := h.contacts.ToggleAdminVisible(c.Request.Context(), middleware.Requester(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Moderation updated", contact))
}
