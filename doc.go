// Copyright (c) 2025, The conftree Authors. All rights reserved. Use of this
// source code is governed by a MIT License that can be found in the LICENSE
// file.

/*
Package conftree loads layered configuration files into one merged tree.
A load starts from a single entry file, follows the imports it declares,
merges the decoded documents into one tree with later documents overriding
earlier ones, and substitutes %name% placeholders from a table of named
parameters the files declare along the way.

	package main

	import (
		"fmt"

		"github.com/ostraca/conftree"
	)

	func main() {
		proc := conftree.NewProcessor(conftree.ProcessorConfig{})
		config, err := proc.Load("etc/app.yml")

		if err != nil {
			fmt.Println("loading failed:", err)
			return
		}

		fmt.Printf("%v\n", config.Interface())
	}

Files decode by extension: YAML (.yml, .yaml), JSON (.json) and TOML (.toml)
out of the box, anything else through a custom Decoder. Mapping key order is
preserved end to end, so two loads of the same sources produce byte-identical
serialized output.

The imports key names further files to load before the current document takes
effect. Entries are paths relative to the importing file, absolute paths, or
key: path pairs that nest the imported document under the key:

	imports:
	  - db.yml
	  - logging: logging.yml

	db:
	  pool: 10

Here db.yml and logging.yml are decoded first, the logging.yml document is
wrapped as {logging: ...}, and the document above merges last, so its db.pool
wins over any pool the import declared. Sequences never merge element-wise; a
later sequence replaces an earlier one entirely.

The parameters key declares named values for placeholder substitution:

	parameters:
	  db.host: stat.mydb.com
	  db.pool: 10

	db:
	  dsn: "postgres://%db.host%:5432"
	  pool: "%db.pool%"

A string that is exactly one placeholder takes the parameter's raw value and
keeps its type: pool above becomes the integer 10, not the string "10". Inside
longer text only plain scalar parameters are spliced; placeholders that name
nothing stay in the text untouched and are not an error. Parameters declared
by imported files are visible to the importing file, and later declarations
shadow earlier ones. Both directive keys are stripped from the merged tree.

A Cache given to the processor short-circuits Load entirely while its
artifact is up to date with every file the load touched; see the confcache
subpackage for the file-based implementation and confwatch for re-running
loads when sources change.
*/
package conftree
