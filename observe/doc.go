// Package observe is the runtime support library for vigil-generated
// observation procedures. User code embeds State into observed structs,
// may hold sources in the version-capable List, Set and Map containers,
// and never calls the remaining helpers directly; generated code does.
package observe
