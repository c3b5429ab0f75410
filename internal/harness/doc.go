// Package harness runs discovery scenarios described in YAML.
//
// A scenario declares one or more surfaces, each a fixture tree (or raw
// HTML) with a location, plus the ephemeral handles live at walk time. The
// harness discovers every surface with a fresh engine, merges the results,
// catalogs them in an in-memory store, and evaluates the scenario's
// assertions against the merged inventory.
//
// Snapshots of the inventory are canonical JSON (sorted keys, NFC strings,
// no insignificant whitespace) so golden files are byte-stable.
//
// # Scenario format
//
//	name: shadow_before_host
//	description: Shadow content is merged before the host's own sources
//	surfaces:
//	  - url: https://example.test/
//	    tree:
//	      tag: html
//	      children:
//	        - tag: x-card
//	          style: { background-image: 'url("/host.png")' }
//	          shadow:
//	            children:
//	              - tag: img
//	                attrs: { src: /inner.png }
//	assertions:
//	  - type: records
//	    locators: [https://example.test/inner.png, https://example.test/host.png]
package harness
