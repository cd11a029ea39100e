// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package file parses small line-oriented system files for capture units.
//
// A Parser splits content into lines and, for key/value files such as
// /etc/os-release, into a map:
//
//	p := file.NewParser(
//	    file.WithTrimChars(`"'`),
//	    file.WithSkipEmptyValues(true),
//	)
//	release, err := p.ReadMap("/etc/os-release")
//
// Files larger than the configured maximum (1 MiB by default) or with
// invalid UTF-8 are rejected, so a unit never pulls an unbounded file into
// a record.
package file
