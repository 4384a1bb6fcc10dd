package graph

import "fmt"

// ValidationSeverity indicates whether a finding blocks anything or is
// merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // structural problem
	SeverityWarning                           // advisory
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID // zero for document-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs all structural checks on the revision and returns the
// findings. It is advisory and read-only: the reducer never consults it,
// and a document with findings is still fully operable. knownType may be
// nil to skip type-tag checks.
func Validate(rev *Revision, knownType func(string) bool) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateParents(rev)...)
	errs = append(errs, validateEndpoints(rev)...)
	errs = append(errs, validateDuplicateConnections(rev)...)
	if knownType != nil {
		errs = append(errs, validateTypeTags(rev, knownType)...)
	}
	return errs
}

// validateParents reports dangling ParentID references. These are
// tolerated at runtime (NormalizeMembership clears them), hence warnings.
func validateParents(rev *Revision) []ValidationError {
	var errs []ValidationError
	for _, n := range rev.Nodes {
		if n.ParentID.IsZero() {
			continue
		}
		if rev.Node(n.ParentID) == nil {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("parent reference %s does not exist", n.ParentID.Short()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateEndpoints reports connections whose node endpoints are gone.
func validateEndpoints(rev *Revision) []ValidationError {
	var errs []ValidationError
	for _, c := range rev.Connections {
		if rev.Node(c.FromNode) == nil {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("connection %s source node %s does not exist", c.ID, c.FromNode.Short()),
				Severity: SeverityError,
			})
		}
		if rev.Node(c.ToNode) == nil {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("connection %s target node %s does not exist", c.ID, c.ToNode.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// connKey canonicalizes a connection's endpoint pair so duplicates are
// detected regardless of insertion order.
type connKey struct {
	from, to PortKey
}

// validateDuplicateConnections warns when two connections join the same
// port pair. Duplicates are legal (multi-connection policy lives above
// this core) but usually unintended.
func validateDuplicateConnections(rev *Revision) []ValidationError {
	var errs []ValidationError
	seen := make(map[connKey]ConnectionID)
	for _, c := range rev.Connections {
		key := connKey{from: c.FromKey(), to: c.ToKey()}
		if firstID, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("connection %s duplicates %s over the same port pair", c.ID, firstID),
				Severity: SeverityWarning,
			})
		} else {
			seen[key] = c.ID
		}
	}
	return errs
}

// validateTypeTags reports nodes whose type tag the catalog does not
// know. Such nodes cannot resolve ports and any query for them errors.
func validateTypeTags(rev *Revision, knownType func(string) bool) []ValidationError {
	var errs []ValidationError
	for _, n := range rev.Nodes {
		if !knownType(n.Type) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("unknown node type %q", n.Type),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
