// Package harness runs YAML playback scenarios against the engine.
//
// A scenario names a recording (a file, inline events, or both: the file's
// events come first), seeks through it and asserts on the snapshot after
// each seek.
//
// # Scenario Format
//
//	name: move_and_back
//	description: "Seeking backward restores the original child order"
//	recording: recordings/list.json
//	events:
//	  - type: mutation_move
//	    args: [4, 3, 2]
//	steps:
//	  - seek: 1
//	    assertions:
//	      - type: children
//	        node: "2"
//	        children: ["3", "4"]
//	  - end: true
//	    assertions:
//	      - type: children
//	        node: "2"
//	        children: ["4", "3"]
//	golden: true
//
// Every step sets exactly one of seek (an event index), seek_time (a
// timestamp) or end.
//
// # Assertion Types
//
//   - node_exists / node_absent: a global id is or is not live
//   - children: the ordered child ids of a node
//   - attribute: an attribute value, or absent: true
//   - data: the character data of a text-like node
//   - cursor: any of x, y, pressed, hover
//   - touches: the exact set of active touches
//   - custom_elements: the exact list of registered names
//   - viewport: width and height, or absent: true
//   - diagnostics: the number of diagnostics since the last reset,
//     optionally of one code
//
// # Golden Files
//
// With golden: true the text projection of the final snapshot is compared
// to golden/<name>.golden next to the scenario file.
package harness
