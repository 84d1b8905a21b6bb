// SPDX-License-Identifier: MPL-2.0

// Package zipapp assembles Python zip applications.
//
// A Builder resolves the include specifications of a Request against the
// request's base directory, streams every file into a deflate-compressed zip
// archive under the archive root, and writes the generated bootstrap as the
// last member, __main__.py. When a launcher is requested the finished archive
// is handed to package launcher to gain a shebang header.
//
// Member timestamps are fixed and members are written in a stable order, so two
// builds of the same request over the same files produce identical bytes.
package zipapp
