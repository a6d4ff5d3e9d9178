// Package appfactory turns a natural-language request into a generated
// Next.js project.
//
// The pipeline has four stages, each usable on its own:
//
//   - [Architect] plans an [AppSpec] with one structured generation call.
//   - [Engineer] fills the code of every planned file, one call per file.
//   - [Assembler] copies a template and writes the generated files over it.
//   - [Operator] builds the static export and uploads it with pinme.
//
// [Pipeline] runs them in order.
package appfactory
