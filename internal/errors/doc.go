// Package errors provides coded, actionable errors for the weave CLI and
// its configuration and manifest loaders.
//
// Each error has a code (e.g. "E301") registered with a category, a short
// message and a longer explanation:
//
//   - E1xx: configuration (weave.json)
//   - E2xx: runtime (component construction and updates)
//   - E3xx: manifest (templates, drops and mount trees)
//   - E4xx: CLI and publishing
//
// # Usage
//
//	err := errors.New("E301").
//	    WithLocation("weave.yaml", 12, 5).
//	    WithSuggestion(`Register the template under "templates:" first`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E301: Unknown template
//	//
//	//   weave.yaml:12:5
//	//
//	//      11 │   - id: main
//	//   →  12 │     component: crad
//	//          │     ^
//	//      13 │     props:
//	//
//	//   Hint: Register the template under "templates:" first
package errors
