// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the HCL manifest format for node definitions and the
// logic for parsing it.
package registry

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Manifest is a node definition as declared in HCL, before it is bound to
// its Go handler.
type Manifest struct {
	ID          string
	Description string
	Handler     string
	Pure        bool
	// ConfigType is cty.NilType when the manifest declares no config.
	ConfigType cty.Type
	Inputs     []port.Descriptor
	Outputs    []port.Descriptor
	// PortDocs holds the optional description of each port, keyed by
	// direction and name.
	PortDocs map[port.Direction]map[string]string
	// DeclRange is where the node block starts, for diagnostics.
	DeclRange hcl.Range
}

type manifestRootSchema struct {
	Nodes []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	ID        string    `hcl:"id,label"`
	Body      hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}

var nodeBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "handler", Required: true},
		{Name: "description"},
		{Name: "pure"},
		{Name: "config"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

var portBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "description"},
	},
}

// parseManifestFile decodes every node block in an HCL file.
func (r *Registry) parseManifestFile(file *hcl.File) ([]*Manifest, hcl.Diagnostics) {
	var root manifestRootSchema
	diags := gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, diags
	}

	manifests := make([]*Manifest, 0, len(root.Nodes))
	for _, n := range root.Nodes {
		m, nodeDiags := r.parseNode(n)
		diags = append(diags, nodeDiags...)
		if nodeDiags.HasErrors() {
			continue
		}
		manifests = append(manifests, m)
	}
	return manifests, diags
}

func (r *Registry) parseNode(n *hclNode) (*Manifest, hcl.Diagnostics) {
	content, diags := n.Body.Content(nodeBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	m := &Manifest{
		ID:        n.ID,
		DeclRange: n.DeclRange,
		PortDocs: map[port.Direction]map[string]string{
			port.Input:  {},
			port.Output: {},
		},
	}

	if !port.ValidName(n.ID) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid node name",
			Detail:   fmt.Sprintf("%q cannot be used as a node name: names must be non-empty and contain no dots or spaces.", n.ID),
			Subject:  n.DeclRange.Ptr(),
		})
	}

	diags = append(diags, gohcl.DecodeExpression(content.Attributes["handler"].Expr, nil, &m.Handler)...)
	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &m.Description)...)
	}
	if attr, ok := content.Attributes["pure"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &m.Pure)...)
	}
	if attr, ok := content.Attributes["config"]; ok {
		ty, typeDiags := r.parseType(attr.Expr)
		diags = append(diags, typeDiags...)
		m.ConfigType = ty
	}

	var portDiags hcl.Diagnostics
	m.Inputs, portDiags = r.parsePorts(content.Blocks.OfType("input"), port.Input, m.PortDocs[port.Input])
	diags = append(diags, portDiags...)
	m.Outputs, portDiags = r.parsePorts(content.Blocks.OfType("output"), port.Output, m.PortDocs[port.Output])
	diags = append(diags, portDiags...)

	if len(m.Outputs) == 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Node has no outputs",
			Detail:   fmt.Sprintf("Node %q must declare at least one output block.", n.ID),
			Subject:  n.DeclRange.Ptr(),
		})
	}
	return m, diags
}

// parsePorts decodes the input or output blocks of a node, in declaration order.
func (r *Registry) parsePorts(blocks hcl.Blocks, dir port.Direction, docs map[string]string) ([]port.Descriptor, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	ports := make([]port.Descriptor, 0, len(blocks))
	seen := make(map[string]struct{}, len(blocks))

	for _, block := range blocks {
		// The schema guarantees us one label.
		name := block.Labels[0]

		if _, exists := seen[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %s definition", dir),
				Detail:   fmt.Sprintf("An %s named '%s' has already been defined.", dir, name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = struct{}{}

		content, contentDiags := block.Body.Content(portBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := content.Attributes["type"]
		if !exists {
			missing := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   fmt.Sprintf("The 'type' attribute is required for all %s blocks.", dir),
				Subject:  &missing,
			})
			continue
		}

		ty, typeDiags := r.parseType(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		if attr, ok := content.Attributes["description"]; ok {
			var doc string
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &doc)...)
			docs[name] = doc
		}

		ports = append(ports, port.Descriptor{Name: name, Type: ty, Direction: dir})
	}
	return ports, diags
}

// parseType resolves a type keyword. Names registered with RegisterType win
// over HCL's own type expressions.
func (r *Registry) parseType(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && len(traversal) == 1 {
		if ty, ok := r.types[traversal.RootName()]; ok {
			return ty, nil
		}
	}

	ty, diags := typeexpr.Type(expr)
	if diags.HasErrors() {
		return cty.NilType, diags
	}
	if ty.Equals(cty.DynamicPseudoType) {
		return cty.NilType, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid port type",
			Detail:   "Ports must have a concrete type; 'any' is not allowed.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	return ty, nil
}
