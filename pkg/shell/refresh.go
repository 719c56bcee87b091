package shell

// reactRefreshPreamble is injected before any app module graph import
// (§4.D step 6). %s is the JS-string-literal-encoded URL of the
// react-refresh runtime module on the runtime CDN.
const reactRefreshPreamble = `  <script type="module">
    import RefreshRuntime from %s;
    RefreshRuntime.injectIntoGlobalHook(window);
    window.$RefreshReg$ = () => {};
    window.$RefreshSig$ = () => (type) => type;
    window.$RefreshRuntime$ = RefreshRuntime;
    window.__nextliteRefreshReady = true;
  </script>
`
