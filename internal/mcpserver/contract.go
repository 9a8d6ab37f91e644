package mcpserver

// FrontmatterContract describes the frontmatter every knowledge base document
// carries. LLM consumers should read it before editing metadata.
const FrontmatterContract = `# Frontmatter Contract

Every document under the marker directory starts with a frontmatter block.

## Structure

` + "```" + `markdown
---
title: Combat System
version: "1.2.0"
scope: framework
created: "2026-01-10"
modified: "2026-10-15"
category: systems
tags: [combat, core]
paired_document: combat-system_KOR.md
status: active
references:
  - ../design/damage-model.md
parent_documents:
  - ./INDEX.md
---
` + "```" + `

## Grammar

1. The first line of the file is exactly ` + "`---`" + `; the block ends at the next ` + "`---`" + ` line.
2. Each entry is ` + "`key: value`" + ` on a line that does not start with whitespace.
3. One layer of matching single or double quotes around a value is removed.
4. ` + "`[a, b]`" + ` is an inline list. ` + "`key:`" + ` with no value opens a block list whose
   items are lines starting with two spaces, a dash and a space.
5. Blank lines and lines starting with ` + "`#`" + ` are ignored. Nested mappings and
   multi-line strings are not supported.

## Rules

1. **Required fields:** title, version, scope, created, modified, category, tags,
   paired_document, status. Each must be present and non-empty.
2. **version** is MAJOR.MINOR.PATCH (e.g. ` + "`1.2.0`" + `). Use the bump_version tool to change it.
3. **status** is one of draft, review, approved, deprecated, active.
4. **modified** is a ` + "`YYYY-MM-DD`" + ` date. Translations are out of sync when the original's
   date is later than its pair's.
5. **paired_document**, **references** and **parent_documents** are paths relative to the
   document's own directory. Paths without ` + "`./`" + ` or ` + "`../`" + ` are also resolved
   against the document's directory, never the project root.
6. **Scope:** documents with scope ` + "`framework`" + ` must not reference or name as parent any
   document with scope ` + "`game`" + `.
7. The navigation block after the frontmatter is generated; do not edit it by hand.
`
