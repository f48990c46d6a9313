// Package prompt renders generation prompts from tracker schema snapshots:
// per-field instructions, example trackers from the schema's example rounds,
// the sanitized recent chat window, and the JSON response skeleton the
// backend is asked to fill. Templates run through a pongo2 template set;
// callers can swap the builtin template for their own via WithBaseDir or
// WithTemplateFS.
package prompt
