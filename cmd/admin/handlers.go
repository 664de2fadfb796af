package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"wolfwave-builder/internal/generator"
	"wolfwave-builder/internal/layout"
	"wolfwave-builder/internal/model"
	"wolfwave-builder/internal/storage"
	"wolfwave-builder/internal/templating"
)

// templateRequest is the envelope the editor shell posts: the document
// itself plus optional canvas metrics. When canvas metrics are
// present, geometry is normalized (absolutify + relativize) before
// generation.
type templateRequest struct {
	Document model.TemplateDocument `json:"document"`
	Canvas   *layout.CanvasMetrics  `json:"canvas,omitempty"`
}

type generateResponse struct {
	Slug     string   `json:"slug"`
	Markup   string   `json:"markup"`
	Warnings []string `json:"warnings,omitempty"`
}

type saveResponse struct {
	Artifact *storage.Artifact `json:"artifact"`
	Warnings []string          `json:"warnings,omitempty"`
}

func (app *adminApplication) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Failed to encode response", "error", err)
	}
}

func (app *adminApplication) writeError(w http.ResponseWriter, status int, err error) {
	app.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeRequest reads the posted template envelope and applies the
// optional geometry normalization.
func (app *adminApplication) decodeRequest(r *http.Request) (*model.TemplateDocument, error) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	doc := &req.Document
	if req.Canvas != nil {
		absolute, err := layout.Absolutify(doc, *req.Canvas)
		if err != nil {
			return nil, fmt.Errorf("absolutify failed: %w", err)
		}
		doc, err = layout.Relativize(absolute, *req.Canvas)
		if err != nil {
			return nil, fmt.Errorf("relativize failed: %w", err)
		}
	}
	return doc, nil
}

// generationStatus maps generator failures to HTTP status codes.
// Validation problems in the posted document are the client's fault.
func generationStatus(err error) int {
	var dup *generator.DuplicateRegionError
	var geo *generator.GeometryError
	var region *generator.InvalidRegionNameError
	if errors.As(err, &dup) || errors.As(err, &geo) || errors.As(err, &region) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func warningStrings(warnings []*generator.UnknownTypeWarning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}

func (app *adminApplication) componentsHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, app.registry.Definitions())
}

func (app *adminApplication) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	artifacts, err := app.store.List()
	if err != nil {
		app.logger.Error("Failed to list artifacts", "error", err)
		app.writeError(w, http.StatusInternalServerError, err)
		return
	}
	app.writeJSON(w, http.StatusOK, artifacts)
}

// saveTemplateHandler is the main save path: validate, generate, then
// persist. Validation failures surface before any file write.
func (app *adminApplication) saveTemplateHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := app.decodeRequest(r)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := app.generator.Generate(doc)
	if err != nil {
		app.logger.Warn("Generation failed", "template", doc.Name, "error", err)
		app.writeError(w, generationStatus(err), err)
		return
	}

	artifact, err := app.store.Save(doc.Name, res.Markup)
	if err != nil {
		app.logger.Error("Failed to save artifact", "template", doc.Name, "error", err)
		app.writeError(w, http.StatusInternalServerError, err)
		return
	}

	app.logger.Info("Saved template", "template", doc.Name, "path", artifact.Path, "warnings", len(res.Warnings))
	app.writeJSON(w, http.StatusCreated, saveResponse{
		Artifact: artifact,
		Warnings: warningStrings(res.Warnings),
	})
}

// generateTemplateHandler is the dry-run path: markup comes back to
// the caller, nothing is written.
func (app *adminApplication) generateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := app.decodeRequest(r)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := app.generator.Generate(doc)
	if err != nil {
		app.writeError(w, generationStatus(err), err)
		return
	}

	app.writeJSON(w, http.StatusOK, generateResponse{
		Slug:     res.Slug,
		Markup:   res.Markup,
		Warnings: warningStrings(res.Warnings),
	})
}

// previewTemplateHandler generates the document and returns it with
// all CMS regions sample-filled, for the editor's preview pane.
func (app *adminApplication) previewTemplateHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := app.decodeRequest(r)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := app.generator.Generate(doc)
	if err != nil {
		app.writeError(w, generationStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, templating.FillSample(res.Markup))
}

func (app *adminApplication) getTemplateHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	markup, err := app.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			app.writeError(w, http.StatusNotFound, fmt.Errorf("template %q not found", name))
			return
		}
		app.logger.Error("Failed to read artifact", "name", name, "error", err)
		app.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, markup)
}

func (app *adminApplication) deleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := app.store.Remove(name); err != nil {
		app.logger.Error("Failed to delete artifact", "name", name, "error", err)
		app.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
