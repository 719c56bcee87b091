package transform

import (
	"context"
	"strings"
	"testing"
)

func TestTransformCachingHitOnSecondCall(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, nil, "/__virtual__/3000")
	src := []byte("export default function Home(){ return null }")

	_, hit1, err := tr.TransformESM(context.Background(), "/pages/index.jsx", src)
	if err != nil {
		t.Fatal(err)
	}
	if hit1 {
		t.Fatal("first transform should not be a cache hit")
	}

	_, hit2, err := tr.TransformESM(context.Background(), "/pages/index.jsx", src)
	if err != nil {
		t.Fatal(err)
	}
	if !hit2 {
		t.Fatal("second transform with identical bytes should be a cache hit")
	}
}

func TestTransformCacheInvalidatesOnEdit(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, nil, "/__virtual__/3000")
	tr.TransformESM(context.Background(), "/pages/index.jsx", []byte("A"))

	_, hit, err := tr.TransformESM(context.Background(), "/pages/index.jsx", []byte("B"))
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("edited source should not be a cache hit")
	}

	_, hit2, err := tr.TransformESM(context.Background(), "/pages/index.jsx", []byte("B"))
	if err != nil {
		t.Fatal(err)
	}
	if !hit2 {
		t.Fatal("re-requesting the edited content should now hit")
	}
}

func TestTransformModuleCSS(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, nil, "")
	out, _, err := tr.TransformESM(context.Background(), "/pages/styles.module.css", []byte(".title { color: red; }"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "export default __classes") {
		t.Fatalf("expected class map export, got %s", out)
	}
	if !strings.Contains(out, "title__") {
		t.Fatalf("expected scoped class name, got %s", out)
	}
}

func TestTransformPlainCSSStripsImport(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, nil, "")
	out, _, err := tr.TransformESM(context.Background(), "/pages/global.css", []byte("body { margin: 0; }"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "margin") {
		t.Fatalf("plain css import should be stripped, got %s", out)
	}
}

func TestTransformAliasRewrite(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, map[string]string{"@/": "/src/"}, "/__virtual__/3000")
	out, _, err := tr.TransformESM(context.Background(), "/pages/index.jsx", []byte(`import Button from "@/components/Button"`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "/__virtual__/3000/src/components/Button") {
		t.Fatalf("expected alias rewrite, got %s", out)
	}
}

func TestTransformBareImportRedirectedToCDN(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, nil, "")
	out, _, err := tr.TransformESM(context.Background(), "/pages/index.jsx", []byte(`import { useState } from "react"`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, DefaultCDN+"react") {
		t.Fatalf("expected bare import redirected to CDN, got %s", out)
	}
}

func TestTransformUnavailableBackendPassesThroughNonJSX(t *testing.T) {
	tr := &Transformer{Cache: NewCache(16)}
	out, _, err := tr.TransformESM(context.Background(), "/pages/util.js", []byte("export const x = 1;"))
	if err != nil {
		t.Fatal(err)
	}
	if out != "export const x = 1;" {
		t.Fatalf("expected verbatim passthrough, got %q", out)
	}
}

func TestCJSPathSkipsRefreshAndCDN(t *testing.T) {
	tr := NewTransformer(PassthroughBackend{}, nil, "")
	out, _, err := tr.TransformCJS(context.Background(), "/app/api/health/route.tsx", []byte(`import { z } from "zod"`))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, DefaultCDN) {
		t.Fatalf("CJS path must not redirect to CDN, got %s", out)
	}
	if strings.Contains(out, "RefreshReg") {
		t.Fatalf("CJS path must not inject react refresh, got %s", out)
	}
}
