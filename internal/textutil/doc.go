// Package textutil provides the formatting and validation helpers shared by
// the submission, moderation, and overview views.
//
// The primary use cases are:
//   - Rendering timestamps as relative ("5 minutes ago") or absolute text
//   - Validating caption text against the 280 character post limit
//   - Truncating long transcriptions for table display
//   - Formatting audio file sizes and building safe recording file names
//   - Debouncing bursty callbacks such as progress redraws
//
// Caption length is counted in Unicode code points so that accented text and
// emoji are not over-counted.
package textutil
