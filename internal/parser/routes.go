package parser

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/toyz/relay/internal/annotations"
	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/models"
)

func (p *Parser) collectRoutes(st *packageState, file *ast.File) {
	relayName, _ := relayImportName(file)

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		for _, a := range p.docAnnotations(st, fn.Doc) {
			if a.Kind != annotations.RouteKind {
				st.errs.Add(errors.NewValidationError("kind",
					fmt.Sprintf("//relay::%s cannot annotate function %s", a.Kind, fn.Name.Name), a.Location))
				continue
			}
			if err := p.addRoute(st, fn, a, relayName); err != nil {
				st.errs.Add(err)
			}
		}
	}
}

func (p *Parser) addRoute(st *packageState, fn *ast.FuncDecl, a *annotations.Annotation, relayName string) error {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return errors.NewValidationError("target",
			fmt.Sprintf("route %s must be a method of a controller", fn.Name.Name), a.Location)
	}
	receiver := baseTypeName(fn.Recv.List[0].Type)
	idx, ok := st.controllers[receiver]
	if !ok {
		return errors.NewValidationError("target",
			fmt.Sprintf("route %s.%s: %s is not annotated with //relay::controller", receiver, fn.Name.Name, receiver), a.Location)
	}
	if !fn.Name.IsExported() {
		return errors.NewValidationError("target",
			fmt.Sprintf("route handler %s.%s must be exported", receiver, fn.Name.Name), a.Location)
	}

	params := handlerParams(fn.Type, relayName)
	if err := applyParamNames(params, a.Params()); err != nil {
		return errors.NewValidationError("Params",
			fmt.Sprintf("route %s.%s: %v", receiver, fn.Name.Name, err), a.Location)
	}

	route := models.RouteMetadata{
		HandlerName:  fn.Name.Name,
		Path:         a.Arg(0),
		Params:       params,
		ReturnsError: returnsError(fn.Type),
		Location:     a.Location,
	}
	controller := &st.meta.Controllers[idx]
	controller.Routes = append(controller.Routes, route)
	return nil
}

// handlerParams lists one entry per argument of fn. Arguments are bound to
// the request parameter of their own name unless they are the request or
// the response, are blank or unnamed.
func handlerParams(fn *ast.FuncType, relayName string) []models.ParamMetadata {
	var params []models.ParamMetadata
	for _, field := range fn.Params.List {
		typ := types.ExprString(field.Type)
		reserved := isReserved(field.Type, relayName)

		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{{Name: ""}}
		}
		for _, n := range names {
			param := models.ParamMetadata{GoName: n.Name, Type: typ, Reserved: reserved}
			if !reserved && n.Name != "" && n.Name != "_" {
				param.RequestName = n.Name
			}
			params = append(params, param)
		}
	}
	return params
}

// applyParamNames overrides the request names listed in -Params.
func applyParamNames(params []models.ParamMetadata, bindings []annotations.ParamBinding) error {
	for _, b := range bindings {
		found := false
		for i := range params {
			if params[i].GoName != b.GoName {
				continue
			}
			if params[i].Reserved {
				return fmt.Errorf("parameter %s is the %s and cannot be renamed", b.GoName, params[i].Type)
			}
			params[i].RequestName = b.RequestName
			found = true
		}
		if !found {
			return fmt.Errorf("-Params names %s, which is not a parameter of the handler", b.GoName)
		}
	}
	return nil
}

func isReserved(expr ast.Expr, relayName string) bool {
	if relayName == "" {
		return false
	}
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != relayName {
		return false
	}
	return sel.Sel.Name == "Request" || sel.Sel.Name == "Response"
}

func returnsError(fn *ast.FuncType) bool {
	if fn.Results == nil || len(fn.Results.List) == 0 {
		return false
	}
	last := fn.Results.List[len(fn.Results.List)-1]
	ident, ok := last.Type.(*ast.Ident)
	return ok && ident.Name == "error"
}

// relayImportName returns the local name of the runtime package in file.
func relayImportName(file *ast.File) (string, bool) {
	for _, imp := range file.Imports {
		if imp.Path.Value != `"`+RelayImportPath+`"` {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == "_" {
				return "", false
			}
			return imp.Name.Name, true
		}
		return "relay", true
	}
	return "", false
}
