//go:build unix

/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import "golang.org/x/sys/unix"

// On unix, malformed flags and malformed/unreadable input are reported
// with the sysexits.h codes a shell pipeline can branch on, the way the
// teacher's z/file_linux.go reaches for platform-specific behavior rather
// than a single flat exit status.
const (
	exitUsage   = unix.EX_USAGE
	exitDataErr = unix.EX_DATAERR
)
