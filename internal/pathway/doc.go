// Package pathway holds the data model shared by the transfer planner: the
// course catalog with normalized prerequisite expressions, articulation
// agreements, target requirement groups, general-education patterns, and the
// exported term plan. Loaders in this package are the ingestion boundary;
// everything under internal/pathway/... consumes only the closed forms
// defined here.
package pathway
