// Package yatube is a small blogging site: users publish posts, file them
// under groups, comment on each other's posts and follow authors.
//
// The binaries live under cmd/:
//
//   - cmd/server: the web server
//   - cmd/yatubectl: schema migration, group and user administration, seeding
//
// Application code is under internal/, wired together by internal/app.
package yatube
