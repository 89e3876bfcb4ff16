package serve

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"inkpress/internal/app"
	domainerr "inkpress/internal/domain/errors"
	"inkpress/internal/domain/site"
	"inkpress/internal/render"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type langKey struct{}

// Handler is the dev server's router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.StripSlashes)

	r.Get(liveReloadPath, s.handleSSE)
	r.Get("/highlight.css", s.handleHighlightCSS)
	r.Get("/s/{short}", s.handleShort)

	r.Group(func(r chi.Router) {
		r.Use(s.defaultLocale)
		s.mountPages(r)
	})
	r.Route("/{lang}", func(r chi.Router) {
		r.Use(s.explicitLocale)
		s.mountPages(r)
	})
	r.NotFound(s.handleFallback)

	if bp := s.basePath(); bp != "" {
		outer := chi.NewRouter()
		outer.Mount(bp, r)
		return outer
	}
	return r
}

func (s *Server) mountPages(r chi.Router) {
	r.Get("/", s.fixed(site.RouteIndex))
	r.Get("/post/{y}/{m}/{d}/{slug}", s.handlePost)
	r.Get("/series/{name}", s.bySegment("name", (*app.Pages).SeriesBySegment, (*app.RouteBuilder).Series))
	r.Get("/tags", s.fixed(site.RouteTags))
	r.Get("/tags/{tag}", s.bySegment("tag", (*app.Pages).TagBySegment, (*app.RouteBuilder).Tag))
	r.Get("/categories", s.fixed(site.RouteCategories))
	r.Get("/categories/{cat}", s.bySegment("cat", (*app.Pages).CategoryBySegment, (*app.RouteBuilder).Category))
	r.Get("/archives", s.fixed(site.RouteArchive))
	r.Get("/about", s.fixed(site.RouteAbout))
	r.Get("/links", s.fixed(site.RouteLinks))
}

// defaultLocale serves unprefixed paths in the default locale. When the
// default locale carries a prefix too, "/" goes to the best Accept-Language
// match and other paths to their default-locale URL.
func (s *Server) defaultLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		def := s.locales.Default()
		if s.cfg.I18n.PrefixDefault {
			rest := s.routePath(r)
			lang := def
			if rest == "/" {
				lang = s.locales.Match(r.Header.Get("Accept-Language"))
			}
			http.Redirect(w, r, s.locales.Path(lang, rest), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), langKey{}, def)))
	})
}

func (s *Server) explicitLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "lang")
		if !s.locales.Has(raw) {
			s.handleFallback(w, r)
			return
		}
		lang := s.locales.Normalize(raw)
		if lang != raw || (lang == s.locales.Default() && !s.cfg.I18n.PrefixDefault) {
			_, rest, _ := s.locales.StripLocale(s.routePath(r))
			http.Redirect(w, r, s.locales.Path(lang, rest), http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), langKey{}, lang)))
	})
}

// routePath 是去掉 base path 之后的请求路径
func (s *Server) routePath(r *http.Request) string {
	p := strings.TrimPrefix(r.URL.Path, s.basePath())
	if p == "" {
		return "/"
	}
	return p
}

func (s *Server) lang(r *http.Request) string {
	if lang, ok := r.Context().Value(langKey{}).(string); ok {
		return lang
	}
	return s.locales.Default()
}

func (s *Server) current() *app.Pages {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

func (s *Server) routeBuilder() *app.RouteBuilder {
	return &app.RouteBuilder{Index: s.idx, Locales: s.locales}
}

// serveRoute renders route; a missing page becomes the 404 page.
func (s *Server) serveRoute(w http.ResponseWriter, r *http.Request, route site.Route) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.serveLocked(w, r, route, http.StatusOK)
}

func (s *Server) serveLocked(w http.ResponseWriter, r *http.Request, route site.Route, status int) {
	if s.pages == nil {
		http.Error(w, "site not built yet", http.StatusServiceUnavailable)
		return
	}
	page, err := s.pages.Page(r.Context(), route)
	if errors.Is(err, domainerr.ErrNotFound) && route.Kind != site.RouteNotFound {
		s.serveLocked(w, r, s.routeBuilder().Fixed(site.RouteNotFound, route.Lang), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("build page", zap.Stringer("route", route), zap.Error(err))
		http.Error(w, "page error", http.StatusInternalServerError)
		return
	}
	htmlBytes, err := page.Render(r.Context())
	if err != nil {
		s.log.Error("render page", zap.Stringer("route", route), zap.Error(err))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, htmlBytes)
}

func (s *Server) fixed(kind site.RouteKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveRoute(w, r, s.routeBuilder().Fixed(kind, s.lang(r)))
	}
}

// 文章详情页：/post/YYYY/MM/DD/slug，旧 slug 和错误日期都重定向到规范地址
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	slug := chi.URLParam(r, "slug")
	rb := s.routeBuilder()

	meta, err := s.idx.GetMeta(lang, slug)
	if err != nil {
		current, aliasErr := s.idx.ResolveAlias(lang, slug)
		if aliasErr != nil {
			s.serveRoute(w, r, rb.Fixed(site.RouteNotFound, lang))
			return
		}
		if meta, err = s.idx.GetMeta(lang, current); err != nil {
			s.serveRoute(w, r, rb.Fixed(site.RouteNotFound, lang))
			return
		}
	}

	canonical := s.locales.Path(lang, site.PostPath(meta))
	requested := "/post/" + strings.Join([]string{
		chi.URLParam(r, "y"), chi.URLParam(r, "m"), chi.URLParam(r, "d"), slug,
	}, "/") + "/"
	if site.PostPath(meta) != requested {
		http.Redirect(w, r, canonical, http.StatusMovedPermanently)
		return
	}
	s.serveRoute(w, r, rb.Post(meta))
}

// bySegment serves a taxonomy page whose URL segment has to be resolved
// back to its name first.
func (s *Server) bySegment(param string, resolve func(p *app.Pages, lang, seg string) (string, error), route func(rb *app.RouteBuilder, lang, name string) site.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := s.lang(r)
		rb := s.routeBuilder()
		pages := s.current()
		if pages == nil {
			http.Error(w, "site not built yet", http.StatusServiceUnavailable)
			return
		}
		name, err := resolve(pages, lang, chi.URLParam(r, param))
		if err != nil {
			s.serveRoute(w, r, rb.Fixed(site.RouteNotFound, lang))
			return
		}
		s.serveRoute(w, r, route(rb, lang, name))
	}
}

// 短链接：/s/<short>
func (s *Server) handleShort(w http.ResponseWriter, r *http.Request) {
	rb := s.routeBuilder()
	lang, slug, err := s.idx.GetByShortID(chi.URLParam(r, "short"))
	if err == nil {
		if m, err := s.idx.GetMeta(lang, slug); err == nil {
			http.Redirect(w, r, s.locales.Path(lang, rb.Post(m).Path), http.StatusFound)
			return
		}
	}
	s.serveRoute(w, r, rb.Fixed(site.RouteNotFound, s.locales.Default()))
}

func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	css, err := render.HighlightCSS()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(css)
}

// handleFallback serves theme static files and the 404 page for anything else.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + s.routePath(r))
	file := filepath.Join(s.cfg.ThemePath("static"), filepath.FromSlash(rel))
	if st, err := os.Stat(file); err == nil && !st.IsDir() {
		http.ServeFile(w, r, file)
		return
	}
	lang, _, _ := s.locales.StripLocale(s.routePath(r))
	s.serveRoute(w, r, s.routeBuilder().Fixed(site.RouteNotFound, lang))
}

func writeHTML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
