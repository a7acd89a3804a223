// Package paths provides the fixed directory layout of a deployment.
//
// Every deployment lives under a base path:
//
//	<base>/releases/<name>/      one directory per release
//	<base>/shared/<relPath>      persistent resources
//	<base>/maintenance/          fallback content
//	<base>/current               link to a release or to maintenance
//
// These names are not configurable. Only the base path is.
package paths
