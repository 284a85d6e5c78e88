// Package pattern compiles naming-convention expressions into immutable
// matcher definitions.
//
// A pattern is literal text interleaved with typed captures:
//
//	{date:date}-{slug:slug}.{ext:literal-enum(md,txt)}
//	{repo}.feat.{feature}.{type}.{variant}.v{version:integer}.md
//	{date:date}-{title:slug}-{tags:tag-list?}.md   (optional captures end in '?')
//
// Captures are written {name:type(args)?}. The type defaults to slug.
// Built-in types: date, slug, tag-list, literal-enum, integer, free-text.
// Runs of '-', '_' and '.' between captures are separators; other text is
// a literal. A trailing ".ext" literal is the declared file extension.
//
// Compiled patterns are read-only and safe for concurrent use. A [Cache]
// memoizes compilation for callers that compile the same source repeatedly;
// it is constructed and passed explicitly rather than held globally.
package pattern
