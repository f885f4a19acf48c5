package session

// downloadBinding is the CDP binding the content script calls on click.
// Runtime.addBinding gives the page a window function taking one string.
const downloadBinding = "grab4me_download"

// contentScript is evaluated on every new document in the session. It
// injects the download button into each timeline post and, on click, ships a
// snapshot of the post's DOM facts to the Go side through the binding.
//
// X.com's selectors change frequently; when button injection breaks, this is
// the place to look.
const contentScript = `
(function() {
	if (window.__g4mInstalled) return;
	window.__g4mInstalled = true;

	// Called back from Go to surface failures to the user.
	window.__g4mNotify = function(msg) {
		console.error('[g4m] ' + msg);
		alert(msg);
	};

	function addStyles() {
		const style = document.createElement('style');
		style.textContent = [
			'.g4m-action-wrapper { display: flex; align-items: center; margin-left: 30px; }',
			'.g4m-action-item { display: flex; align-items: center; justify-content: center;',
			'  cursor: pointer; width: 38.5px; height: 38.5px; border-radius: 9999px;',
			'  transition-property: background-color, box-shadow; transition-duration: 0.2s; box-sizing: border-box; }',
			'.g4m-action-item:hover { background-color: rgba(29, 155, 240, 0.1); }',
			'.g4m-icon { width: 18.75px; height: 18.75px; fill: rgb(83, 100, 113); }',
			'.g4m-action-item:hover .g4m-icon { fill: rgb(29, 155, 240); }'
		].join('\n');
		document.head.appendChild(style);
	}

	function collectSnapshot(article) {
		const timeEl = article.querySelector('a[href*="/status/"] time');
		const permalink = timeEl ? timeEl.closest('a[href*="/status/"]') : null;
		const anyStatus = article.querySelector('a[href*="/status/"]');

		let handleText = '';
		const userName = article.querySelector('[data-testid="User-Name"]');
		if (userName) {
			const span = Array.from(userName.querySelectorAll('a[href^="/"] span'))
				.find(s => s.textContent.startsWith('@'));
			if (span) handleText = span.textContent;
		}

		const videos = Array.from(article.querySelectorAll('video')).map(v => {
			const source = v.querySelector('source');
			return { src: v.src || '', sourceSrc: (source && source.src) || '' };
		});

		const images = Array.from(article.querySelectorAll('img[src*="pbs.twimg.com/media/"]')).map(img => ({
			src: img.src,
			inPhotoContainer: !!(img.closest('a[href*="/photo/"]') ||
				img.closest('[data-testid="tweetPhoto"], [data-testid="tweetCardPhoto"]'))
		}));

		const labelled = article.closest('article') || article;

		return {
			permalinkHref: permalink ? (permalink.getAttribute('href') || '') : '',
			statusHref: anyStatus ? (anyStatus.getAttribute('href') || '') : '',
			datetime: timeEl ? (timeEl.getAttribute('datetime') || '') : '',
			ariaLabel: labelled.getAttribute('aria-labelledby') || '',
			handleText: handleText,
			videos: videos,
			images: images
		};
	}

	function addDownloadButton(article, attempt) {
		const hasVideos = article.querySelector('video') !== null;
		let hasContentImages = false;
		for (const img of article.querySelectorAll('img[src*="pbs.twimg.com/media/"]')) {
			if (img.closest('a[href*="/photo/"]') ||
				img.closest('[data-testid="tweetPhoto"], [data-testid="tweetCardPhoto"]')) {
				hasContentImages = true;
				break;
			}
		}

		// Media may still be loading; re-check a bounded number of times.
		if (!hasVideos && !hasContentImages) {
			if (attempt < 3) {
				setTimeout(() => addDownloadButton(article, attempt + 1), 500);
			}
			return;
		}

		const actionBar = article.querySelector('div[role="group"]');
		if (!actionBar) {
			console.warn('[g4m] action bar not found for post');
			return;
		}

		if (actionBar.querySelector('.g4m-action-item')) {
			return;
		}

		const wrapper = document.createElement('div');
		wrapper.className = 'g4m-action-wrapper';

		const button = document.createElement('div');
		button.className = 'g4m-action-item';
		button.setAttribute('role', 'button');
		button.setAttribute('tabindex', '0');
		button.setAttribute('aria-label', 'Download');

		const svg = document.createElementNS('http://www.w3.org/2000/svg', 'svg');
		svg.setAttribute('viewBox', '0 0 24 24');
		svg.setAttribute('aria-hidden', 'true');
		svg.classList.add('g4m-icon');
		svg.innerHTML = '<g><path d="M19 9h-4V3H9v6H5l7 7 7-7zM5 18v2h14v-2H5z"></path></g>';

		button.appendChild(svg);
		wrapper.appendChild(button);

		button.addEventListener('click', (event) => {
			event.stopPropagation();
			event.preventDefault();
			const snapshot = collectSnapshot(article);
			console.log('[g4m] download clicked, shipping snapshot', snapshot);
			window.` + downloadBinding + `(JSON.stringify(snapshot));
		});

		actionBar.appendChild(wrapper);
	}

	function observePosts() {
		addStyles();

		const observer = new MutationObserver((mutations) => {
			for (const mutation of mutations) {
				if (mutation.type !== 'childList' || mutation.addedNodes.length === 0) continue;
				mutation.addedNodes.forEach(node => {
					if (node.nodeType !== Node.ELEMENT_NODE) return;
					if (node.matches('article[data-testid="tweet"]')) {
						addDownloadButton(node, 1);
					}
					node.querySelectorAll('article[data-testid="tweet"]').forEach(n => addDownloadButton(n, 1));
				});
			}
		});

		observer.observe(document.body, { childList: true, subtree: true });
		document.querySelectorAll('article[data-testid="tweet"]').forEach(n => addDownloadButton(n, 1));
	}

	if (document.readyState === 'complete' || document.readyState === 'interactive') {
		setTimeout(observePosts, 1000);
	} else {
		document.addEventListener('DOMContentLoaded', observePosts);
	}
})();
`
